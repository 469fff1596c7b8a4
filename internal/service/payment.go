package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"novella-shop/internal/client"
	"novella-shop/internal/model"
	"novella-shop/internal/repository"
	"novella-shop/internal/session"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	stripeEventCheckoutCompleted = "checkout.session.completed"
	yookassaEventSucceeded       = "payment.succeeded"
	yookassaEventCanceled        = "payment.canceled"
)

// PaymentService creates provider payments for persisted orders and
// reconciles order status from provider callbacks.
type PaymentService interface {
	// CreatePayment builds the provider request from the order's persisted
	// lines, submits it, and records the provider reference on the order.
	// It returns the URL the buyer must be redirected to.
	CreatePayment(ctx context.Context, order *model.Order, provider string) (string, error)

	HandleStripeWebhook(ctx context.Context, signatureHeader string, body []byte) error
	HandleYookassaWebhook(ctx context.Context, body []byte) error

	// ConfirmStripeReturn resolves the success redirect's checkout session
	// back to the local order.
	ConfirmStripeReturn(ctx context.Context, checkoutSessionID string) (*model.Order, error)
	// ResolveYookassaReturn settles an ambiguous local status by
	// re-querying the provider; it returns the order's final status.
	ResolveYookassaReturn(ctx context.Context, orderID uint) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID uint) (*model.Order, error)
}

type paymentServiceImpl struct {
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	stripeClient     client.StripeClient
	yookassaClient   client.YookassaClient
	store            session.Store
	baseURL          string
	eurToRubRate     decimal.Decimal
	vatCode          int
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	stripeClient client.StripeClient,
	yookassaClient client.YookassaClient,
	store session.Store,
	baseURL string,
	eurToRubRate decimal.Decimal,
	vatCode int,
) PaymentService {
	return &paymentServiceImpl{
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		stripeClient:     stripeClient,
		yookassaClient:   yookassaClient,
		store:            store,
		baseURL:          baseURL,
		eurToRubRate:     eurToRubRate,
		vatCode:          vatCode,
	}
}

func (s *paymentServiceImpl) CreatePayment(ctx context.Context, order *model.Order, provider string) (string, error) {
	switch provider {
	case model.PaymentProviderStripe:
		return s.createStripePayment(ctx, order)
	case model.PaymentProviderYookassa:
		return s.createYookassaPayment(ctx, order)
	default:
		return "", ErrUnsupportedProvider
	}
}

func (s *paymentServiceImpl) createStripePayment(ctx context.Context, order *model.Order) (string, error) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("get order items: %w", err)
	}

	lineItems := make([]client.StripeLineItem, 0, len(items)+1)
	for _, item := range items {
		lineItems = append(lineItems, client.StripeLineItem{
			Name:       item.Name,
			UnitAmount: item.Price.Mul(decimal.NewFromInt(100)).IntPart(),
			Quantity:   item.Quantity,
		})
	}

	gift, err := s.orderRepo.GetGift(ctx, order.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("get order gift: %w", err)
	}
	if gift != nil {
		lineItems = append(lineItems, client.StripeLineItem{
			Name:       "Gift Wrap: " + gift.Name,
			UnitAmount: gift.Price.Mul(decimal.NewFromInt(100)).IntPart(),
			Quantity:   1,
		})
	}

	successURL := s.baseURL + "/payment/stripe/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := fmt.Sprintf("%s/payment/stripe/cancel?order_id=%d", s.baseURL, order.ID)

	checkoutSession, err := s.stripeClient.CreateCheckoutSession(ctx, order.ID, lineItems, successURL, cancelURL)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}

	if err := s.orderRepo.SetPaymentRef(ctx, order.ID, model.PaymentProviderStripe, checkoutSession.PaymentIntent); err != nil {
		return "", fmt.Errorf("store stripe payment ref: %w", err)
	}

	return checkoutSession.URL, nil
}

func (s *paymentServiceImpl) createYookassaPayment(ctx context.Context, order *model.Order) (string, error) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("get order items: %w", err)
	}

	receiptItems := make([]client.YookassaReceiptItem, 0, len(items)+1)
	for _, item := range items {
		receiptItems = append(receiptItems, client.YookassaReceiptItem{
			Description: item.Name,
			Quantity:    strconv.Itoa(item.Quantity),
			Amount: model.YookassaAmount{
				Value:    s.toRub(item.Price),
				Currency: "RUB",
			},
			VATCode:        s.vatCode,
			PaymentMode:    "full_payment",
			PaymentSubject: "commodity",
		})
	}

	gift, err := s.orderRepo.GetGift(ctx, order.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("get order gift: %w", err)
	}
	if gift != nil {
		receiptItems = append(receiptItems, client.YookassaReceiptItem{
			Description: "Gift Wrap: " + gift.Name,
			Quantity:    "1",
			Amount: model.YookassaAmount{
				Value:    s.toRub(gift.Price),
				Currency: "RUB",
			},
			VATCode:        s.vatCode,
			PaymentMode:    "full_payment",
			PaymentSubject: "commodity",
		})
	}

	req := &client.YookassaCreatePaymentRequest{
		Amount: model.YookassaAmount{
			Value:    s.toRub(order.DiscountedTotal()),
			Currency: "RUB",
		},
		Confirmation: model.YookassaConfirmation{
			Type:      "redirect",
			ReturnURL: fmt.Sprintf("%s/payment/yookassa/success?order_id=%d", s.baseURL, order.ID),
		},
		Capture:     true,
		Description: fmt.Sprintf("Order #%d", order.ID),
		Metadata: model.YookassaMetadata{
			OrderID: strconv.FormatUint(uint64(order.ID), 10),
			UserID:  strconv.FormatUint(uint64(order.UserID), 10),
		},
		Receipt: client.YookassaReceipt{
			Customer: client.YookassaCustomer{
				Email: order.Email,
				Phone: order.Phone,
			},
			Items: receiptItems,
		},
	}

	// order id as the idempotence key: a retried checkout can never create
	// a second charge for the same order
	payment, err := s.yookassaClient.CreatePayment(ctx, req, strconv.FormatUint(uint64(order.ID), 10))
	if err != nil {
		return "", fmt.Errorf("yookassa create payment: %w", err)
	}

	if err := s.orderRepo.SetPaymentRef(ctx, order.ID, model.PaymentProviderYookassa, payment.ID); err != nil {
		return "", fmt.Errorf("store yookassa payment ref: %w", err)
	}

	if payment.Confirmation == nil || payment.Confirmation.ConfirmationURL == "" {
		return "", fmt.Errorf("yookassa payment %s has no confirmation url", payment.ID)
	}

	return payment.Confirmation.ConfirmationURL, nil
}

// toRub converts a EUR amount using the configured fixed rate, rounded to
// two places exactly once.
func (s *paymentServiceImpl) toRub(eur decimal.Decimal) string {
	return eur.Mul(s.eurToRubRate).Round(2).StringFixed(2)
}

func (s *paymentServiceImpl) HandleStripeWebhook(ctx context.Context, signatureHeader string, body []byte) error {
	if err := s.stripeClient.VerifyWebhookSignature(signatureHeader, body); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWebhook, err)
	}

	var event model.StripeWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: decode payload", ErrInvalidWebhook)
	}

	if event.Type != stripeEventCheckoutCompleted {
		return nil // not ours, acknowledge
	}

	orderID, err := strconv.ParseUint(event.Data.Object.Metadata.OrderID, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: missing order_id metadata", ErrOrderNotFound)
	}

	return s.applySuccess(ctx, model.PaymentProviderStripe, event.ID, event.Type,
		uint(orderID), nil, event.Data.Object.PaymentIntent)
}

func (s *paymentServiceImpl) HandleYookassaWebhook(ctx context.Context, body []byte) error {
	var event model.YookassaWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: decode payload", ErrInvalidWebhook)
	}

	payment := event.Object
	if payment.Metadata.OrderID == "" || payment.Metadata.UserID == "" {
		return fmt.Errorf("%w: missing order or user metadata", ErrInvalidWebhook)
	}

	orderID, err := strconv.ParseUint(payment.Metadata.OrderID, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: malformed order_id metadata", ErrInvalidWebhook)
	}
	userID, err := strconv.ParseUint(payment.Metadata.UserID, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: malformed user_id metadata", ErrInvalidWebhook)
	}

	// no signature scheme on this provider; the order+user cross-check is
	// the only authenticity guard
	uid := uint(userID)

	switch {
	case event.Event == yookassaEventSucceeded && payment.Status == "succeeded":
		return s.applySuccess(ctx, model.PaymentProviderYookassa, payment.ID, event.Event,
			uint(orderID), &uid, payment.ID)
	case event.Event == yookassaEventCanceled && payment.Status == "canceled":
		return s.applyCancellation(ctx, model.PaymentProviderYookassa, payment.ID, event.Event,
			uint(orderID), &uid)
	default:
		return nil // other event types acknowledged without state change
	}
}

// applySuccess is the pending→processing transition: dedup by event id,
// lock and advance the order, clear the originating cart and promo state
// exactly once.
func (s *paymentServiceImpl) applySuccess(ctx context.Context, provider, eventID, eventType string, orderID uint, userID *uint, paymentID string) error {
	processed, err := s.webhookEventRepo.Exists(ctx, provider, eventID)
	if err != nil {
		return fmt.Errorf("check processed events: %w", err)
	}
	if processed {
		return nil
	}

	if userID != nil {
		if _, err := s.orderRepo.FindByIDForUser(ctx, orderID, *userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("match order: %w", err)
		}
	}

	order, transitioned, err := s.orderRepo.MarkProcessing(ctx, orderID, provider, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("mark order processing: %w", err)
	}

	if transitioned {
		// side effect of the transition, never of a redelivery
		s.clearCheckoutSession(ctx, order)
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, provider, eventID, eventType); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}

	return nil
}

func (s *paymentServiceImpl) applyCancellation(ctx context.Context, provider, eventID, eventType string, orderID uint, userID *uint) error {
	processed, err := s.webhookEventRepo.Exists(ctx, provider, eventID)
	if err != nil {
		return fmt.Errorf("check processed events: %w", err)
	}
	if processed {
		return nil
	}

	if userID != nil {
		if _, err := s.orderRepo.FindByIDForUser(ctx, orderID, *userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("match order: %w", err)
		}
	}

	if _, _, err := s.orderRepo.MarkCancelled(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("mark order cancelled: %w", err)
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, provider, eventID, eventType); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}

	return nil
}

func (s *paymentServiceImpl) ConfirmStripeReturn(ctx context.Context, checkoutSessionID string) (*model.Order, error) {
	checkoutSession, err := s.stripeClient.GetCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}

	orderID, err := strconv.ParseUint(checkoutSession.Metadata.OrderID, 10, 32)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.FindByID(ctx, uint(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (s *paymentServiceImpl) ResolveYookassaReturn(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// the webhook usually got here first; only re-query on an ambiguous status
	if order.Status == model.OrderStatusProcessing || order.Status == model.OrderStatusCancelled {
		return order, nil
	}
	if order.YookassaPaymentID == "" {
		return order, nil
	}

	payment, err := s.yookassaClient.GetPayment(ctx, order.YookassaPaymentID)
	if err != nil {
		log.Printf("yookassa payment check for order %d: %v", orderID, err)
		return order, nil
	}

	var transitioned bool
	switch payment.Status {
	case "succeeded":
		order, transitioned, err = s.orderRepo.MarkProcessing(ctx, orderID, model.PaymentProviderYookassa, payment.ID)
		if err == nil && transitioned {
			// the redirect can settle the order before the webhook does;
			// the cart and promo go with the transition either way
			s.clearCheckoutSession(ctx, order)
		}
	case "canceled", "failed":
		order, _, err = s.orderRepo.MarkCancelled(ctx, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("settle order status: %w", err)
	}

	return order, nil
}

// clearCheckoutSession drops the cart document and promo application of the
// session that produced the order. Failures are logged only; the order is
// already paid and the stale cart is cosmetic.
func (s *paymentServiceImpl) clearCheckoutSession(ctx context.Context, order *model.Order) {
	if order.CartSessionID == "" {
		return
	}
	if err := s.store.DeleteCart(ctx, order.CartSessionID); err != nil {
		log.Printf("clear cart for session %s: %v", order.CartSessionID, err)
	}
	if err := s.store.ClearPromo(ctx, order.CartSessionID); err != nil {
		log.Printf("clear promo for session %s: %v", order.CartSessionID, err)
	}
}

func (s *paymentServiceImpl) CancelOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, _, err := s.orderRepo.MarkCancelled(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}
