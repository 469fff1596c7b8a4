package service

import (
	"context"
	"testing"

	"novella-shop/internal/model"
	"novella-shop/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promoFixture() (PromoService, *mockStore, *mockPromoRepo) {
	store := newMockStore()
	repo := &mockPromoRepo{Codes: map[string]*model.PromoCode{
		"WELCOME10": {ID: 1, Code: "WELCOME10", DiscountPercentage: eur("10"), IsActive: true},
	}}
	return NewPromoService(store, repo), store, repo
}

func TestPromoApply_ValidCodeSavedInSession(t *testing.T) {
	svc, store, _ := promoFixture()

	discount, err := svc.Apply(context.Background(), "s1", "WELCOME10")
	require.NoError(t, err)

	assert.True(t, discount.Equal(eur("10")))
	require.NotNil(t, store.Promos["s1"])
	assert.Equal(t, "WELCOME10", store.Promos["s1"].Code)
}

func TestPromoApply_InvalidCodeClearsPreviousApplication(t *testing.T) {
	svc, store, _ := promoFixture()
	ctx := context.Background()

	_, err := svc.Apply(ctx, "s1", "WELCOME10")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "s1", "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidPromoCode)
	assert.Nil(t, store.Promos["s1"])
}

func TestCurrentDiscount_NoApplication(t *testing.T) {
	svc, _, _ := promoFixture()

	discount, err := svc.CurrentDiscount(context.Background(), "s1")
	require.NoError(t, err)

	assert.True(t, discount.IsZero())
}

func TestResolve_DeactivatedCodeClearsSession(t *testing.T) {
	svc, store, repo := promoFixture()
	ctx := context.Background()

	_, err := svc.Apply(ctx, "s1", "WELCOME10")
	require.NoError(t, err)

	// code deactivated after it was applied
	delete(repo.Codes, "WELCOME10")

	promo, err := svc.Resolve(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, promo)
	assert.Nil(t, store.Promos["s1"])
}

func TestResolve_ActiveApplication(t *testing.T) {
	svc, store, _ := promoFixture()
	ctx := context.Background()

	store.Promos["s1"] = &session.PromoApplication{Code: "WELCOME10", DiscountPercentage: "10"}

	promo, err := svc.Resolve(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, promo)
	assert.Equal(t, uint(1), promo.ID)
	assert.True(t, promo.DiscountPercentage.Equal(eur("10")))
}
