package service

import (
	"context"
	"fmt"
	"log"

	"novella-shop/internal/model"
	"novella-shop/internal/repository"
	"novella-shop/internal/session"
)

// CheckoutForm carries the validated billing/shipping fields.
type CheckoutForm struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

type CheckoutResult struct {
	OrderID     uint   `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutService materializes the session cart into durable order rows
// and hands the order to the payment gateway.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, sessionID string, userID uint, form *CheckoutForm, provider string) (*CheckoutResult, error)
}

type checkoutServiceImpl struct {
	store          session.Store
	cartService    CartService
	promoService   PromoService
	orderRepo      repository.OrderRepository
	paymentService PaymentService
}

func NewCheckoutService(
	store session.Store,
	cartService CartService,
	promoService PromoService,
	orderRepo repository.OrderRepository,
	paymentService PaymentService,
) CheckoutService {
	return &checkoutServiceImpl{
		store:          store,
		cartService:    cartService,
		promoService:   promoService,
		orderRepo:      orderRepo,
		paymentService: paymentService,
	}
}

// PlaceOrder copies the enumerated cart into one order plus its line rows,
// prices verbatim from the cart snapshots. If payment creation fails the
// order is deleted again and the cart is left untouched for a retry.
func (s *checkoutServiceImpl) PlaceOrder(ctx context.Context, sessionID string, userID uint, form *CheckoutForm, provider string) (*CheckoutResult, error) {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if doc.IsEmpty() {
		return nil, ErrEmptyCart
	}

	entries, err := s.cartService.Enumerate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("enumerate cart: %w", err)
	}

	// every product line may have gone stale since the document was
	// written; such a cart is empty, not a zero-total order
	hasProduct := false
	for _, entry := range entries {
		if entry.Type == EntryTypeProduct {
			hasProduct = true
			break
		}
	}
	if !hasProduct {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		UserID:              userID,
		CartSessionID:       sessionID,
		FirstName:           form.FirstName,
		LastName:            form.LastName,
		Email:               form.Email,
		Company:             form.Company,
		Address1:            form.Address1,
		Address2:            form.Address2,
		City:                form.City,
		Country:             form.Country,
		Province:            form.Province,
		PostalCode:          form.PostalCode,
		Phone:               form.Phone,
		SpecialInstructions: doc.SpecialInstructions,
		TotalPrice:          s.cartService.TotalPrice(entries),
		Status:              model.OrderStatusPending,
	}

	if promo, err := s.promoService.Resolve(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("resolve promo: %w", err)
	} else if promo != nil {
		order.PromoCodeID = &promo.ID
		order.DiscountPercentage = promo.DiscountPercentage
	}

	var items []*model.OrderItem
	var samples []*model.OrderSample
	var gift *model.OrderGift

	for _, entry := range entries {
		switch entry.Type {
		case EntryTypeProduct:
			items = append(items, &model.OrderItem{
				PerfumeID:  entry.PerfumeID,
				CapacityID: entry.CapacityID,
				Name:       entry.Name,
				Quantity:   entry.Quantity,
				Price:      entry.Price,
			})
		case EntryTypeSample:
			samples = append(samples, &model.OrderSample{
				SampleID: entry.SampleID,
				Name:     entry.Name,
			})
		case EntryTypeGift:
			gift = &model.OrderGift{
				GiftID: entry.GiftID,
				Name:   entry.Name,
				Price:  entry.Price,
			}
		}
	}

	if err := s.orderRepo.CreateWithLines(ctx, order, items, samples, gift); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	redirectURL, err := s.paymentService.CreatePayment(ctx, order, provider)
	if err != nil {
		// compensating delete; the cart stays intact for a retry
		if delErr := s.orderRepo.Delete(ctx, order.ID); delErr != nil {
			log.Printf("compensating delete of order %d: %v", order.ID, delErr)
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		RedirectURL: redirectURL,
	}, nil
}
