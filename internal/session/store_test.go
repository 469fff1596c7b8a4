package session

import (
	"context"
	"testing"
	"time"

	"novella-shop/internal/cart"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, ttl time.Duration) (Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
	})

	return NewRedisStore(client, ttl), mr
}

func TestLoadCart_FirstVisitGetsEmptyDocument(t *testing.T) {
	store, _ := setupTestStore(t, 0)

	doc, err := store.LoadCart(context.Background(), "s1")
	require.NoError(t, err)

	assert.True(t, doc.IsEmpty())
	assert.NotNil(t, doc.Products)
	assert.NotNil(t, doc.Samples)
}

func TestSaveLoadCart_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	doc := cart.NewDocument()
	doc.Add(1, 2, decimal.RequireFromString("107.10"), 3, false)
	doc.AddSample("7")
	doc.SetGiftWrap("3")
	doc.SetSpecialInstructions("gift message inside")
	require.NoError(t, store.SaveCart(ctx, "s1", doc))

	restored, err := store.LoadCart(ctx, "s1")
	require.NoError(t, err)

	line := restored.Products[cart.LineKey(1, 2)]
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.UnitPrice().Equal(decimal.RequireFromString("107.10")))
	assert.Equal(t, []string{"7"}, restored.Samples)
	assert.Equal(t, "3", restored.GiftWrap)
	assert.Equal(t, "gift message inside", restored.SpecialInstructions)
}

func TestDeleteCart_NextLoadIsEmpty(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	doc := cart.NewDocument()
	doc.Add(1, 2, decimal.RequireFromString("10.00"), 1, false)
	require.NoError(t, store.SaveCart(ctx, "s1", doc))

	require.NoError(t, store.DeleteCart(ctx, "s1"))

	restored, err := store.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
}

func TestCartTTL_ExpiresWhenConfigured(t *testing.T) {
	store, mr := setupTestStore(t, time.Minute)
	ctx := context.Background()

	doc := cart.NewDocument()
	doc.Add(1, 2, decimal.RequireFromString("10.00"), 1, false)
	require.NoError(t, store.SaveCart(ctx, "s1", doc))

	mr.FastForward(2 * time.Minute)

	restored, err := store.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
}

func TestPromo_RoundTripAndClear(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	_, err := store.LoadPromo(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SavePromo(ctx, "s1", &PromoApplication{
		Code:               "WELCOME10",
		DiscountPercentage: "10",
	}))

	promo, err := store.LoadPromo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", promo.Code)

	require.NoError(t, store.ClearPromo(ctx, "s1"))
	_, err = store.LoadPromo(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
