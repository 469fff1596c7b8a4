package service

import (
	"context"
	"errors"
	"testing"

	"novella-shop/internal/cart"
	"novella-shop/internal/model"
	"novella-shop/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc       CheckoutService
	store     *mockStore
	catalog   *mockCatalogRepo
	orderRepo *mockOrderRepo
	stripe    *mockStripeClient
	yookassa  *mockYookassaClient
}

func newCheckoutFixture() *checkoutFixture {
	store := newMockStore()
	catalog := catalogFixture()
	cartService := NewCartService(store, catalog, NewPricingService(catalog))
	promoService := NewPromoService(store, &mockPromoRepo{Codes: map[string]*model.PromoCode{
		"WELCOME10": {ID: 1, Code: "WELCOME10", DiscountPercentage: eur("10"), IsActive: true},
	}})
	orderRepo := newMockOrderRepo()
	stripe := &mockStripeClient{
		Session: &model.StripeCheckoutSession{
			ID:            "cs_test_1",
			URL:           "https://checkout.stripe.test/cs_test_1",
			PaymentIntent: "pi_1",
		},
	}
	yookassa := &mockYookassaClient{
		Payment: &model.YookassaPayment{
			ID:     "yk_1",
			Status: "pending",
			Confirmation: &model.YookassaConfirmation{
				Type:            "redirect",
				ConfirmationURL: "https://yookassa.test/confirm/yk_1",
			},
		},
	}
	paymentService := NewPaymentService(
		orderRepo, newMockWebhookEventRepo(), stripe, yookassa, store,
		"http://localhost:8080", eur("100"), 1,
	)
	svc := NewCheckoutService(store, cartService, promoService, orderRepo, paymentService)
	return &checkoutFixture{svc: svc, store: store, catalog: catalog, orderRepo: orderRepo, stripe: stripe, yookassa: yookassa}
}

func fillCart(store *mockStore, sessionID string) {
	doc := cart.NewDocument()
	doc.Add(1, 1, eur("10.00"), 2, false)
	doc.AddSample("7")
	doc.SetGiftWrap("3")
	doc.SetSpecialInstructions("ring twice")
	store.Carts[sessionID] = doc
}

func checkoutForm() *CheckoutForm {
	return &CheckoutForm{
		FirstName: "Caterina",
		LastName:  "de' Medici",
		Email:     "caterina@example.com",
		Phone:     "+3905512345",
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderStripe)

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_AllProductLinesStaleIsEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")

	// the only product in the cart vanished from the catalog; what is left
	// (sample, gift wrap) cannot be bought on its own
	delete(f.catalog.Perfumes, 1)

	_, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderStripe)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.orderRepo.Orders)
	assert.Equal(t, 0, f.stripe.CreateCalls)
}

func TestPlaceOrder_MaterializesCartVerbatim(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")

	result, err := f.svc.PlaceOrder(context.Background(), "s1", 42, checkoutForm(), model.PaymentProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", result.RedirectURL)

	order := f.orderRepo.Orders[result.OrderID]
	require.NotNil(t, order)
	assert.Equal(t, uint(42), order.UserID)
	assert.Equal(t, "s1", order.CartSessionID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "ring twice", order.SpecialInstructions)
	// product total plus gift wrap, straight from the cart snapshots
	assert.True(t, order.TotalPrice.Equal(eur("25.00")))

	items := f.orderRepo.Items[result.OrderID]
	require.Len(t, items, 1)
	assert.Equal(t, "Acqua di Colonia - 50ml", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(eur("10.00")))

	samples := f.orderRepo.Sampls[result.OrderID]
	require.Len(t, samples, 1)
	assert.Equal(t, uint(7), samples[0].SampleID)

	gift := f.orderRepo.Gifts[result.OrderID]
	require.NotNil(t, gift)
	assert.True(t, gift.Price.Equal(eur("5.00")))

	// order line total equals the cart total it was copied from
	lineTotal := items[0].TotalPrice().Add(gift.Price)
	assert.True(t, lineTotal.Equal(order.TotalPrice))
}

func TestPlaceOrder_AttachesSessionPromo(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")
	f.store.Promos["s1"] = &session.PromoApplication{Code: "WELCOME10", DiscountPercentage: "10"}

	result, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderStripe)
	require.NoError(t, err)

	order := f.orderRepo.Orders[result.OrderID]
	require.NotNil(t, order.PromoCodeID)
	assert.Equal(t, uint(1), *order.PromoCodeID)
	assert.True(t, order.DiscountPercentage.Equal(eur("10")))
	// total stays pre-discount; the discount is applied at charge time
	assert.True(t, order.TotalPrice.Equal(eur("25.00")))
	assert.True(t, order.DiscountedTotal().Equal(eur("22.50")))
}

func TestPlaceOrder_PaymentFailureDeletesOrderKeepsCart(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")
	f.stripe.CreateErr = errors.New("stripe unreachable")

	_, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderStripe)
	require.Error(t, err)

	assert.Equal(t, 1, f.orderRepo.Deletes)
	assert.Empty(t, f.orderRepo.Orders)

	// cart untouched for a retry
	doc := f.store.Carts["s1"]
	require.NotNil(t, doc)
	assert.False(t, doc.IsEmpty())
}

func TestPlaceOrder_CartNotClearedUntilPaymentConfirmed(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")

	_, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderStripe)
	require.NoError(t, err)

	// clearing happens in the webhook reconciler, not at redirect time
	doc := f.store.Carts["s1"]
	require.NotNil(t, doc)
	assert.False(t, doc.IsEmpty())
}

func TestPlaceOrder_UnsupportedProvider(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")

	_, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), "paypal")

	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Equal(t, 1, f.orderRepo.Deletes)
}

func TestPlaceOrder_YookassaUsesOrderIDAsIdempotenceKey(t *testing.T) {
	f := newCheckoutFixture()
	fillCart(f.store, "s1")

	result, err := f.svc.PlaceOrder(context.Background(), "s1", 0, checkoutForm(), model.PaymentProviderYookassa)
	require.NoError(t, err)

	assert.Equal(t, "https://yookassa.test/confirm/yk_1", result.RedirectURL)
	assert.Equal(t, "1", f.yookassa.LastIdkKey)

	order := f.orderRepo.Orders[result.OrderID]
	assert.Equal(t, "yk_1", order.YookassaPaymentID)
}
