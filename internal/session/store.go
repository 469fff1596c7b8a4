package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"novella-shop/internal/cart"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session key not found")

// PromoApplication is the session-scoped promo state, held apart from the
// cart document and applied to totals at read time only.
type PromoApplication struct {
	Code               string `json:"code"`
	DiscountPercentage string `json:"discount_percentage"`
}

// Store persists per-session cart documents and promo applications.
type Store interface {
	LoadCart(ctx context.Context, sessionID string) (*cart.Document, error)
	SaveCart(ctx context.Context, sessionID string, doc *cart.Document) error
	DeleteCart(ctx context.Context, sessionID string) error

	LoadPromo(ctx context.Context, sessionID string) (*PromoApplication, error)
	SavePromo(ctx context.Context, sessionID string, promo *PromoApplication) error
	ClearPromo(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration // zero means keys never expire
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func promoKey(sessionID string) string {
	return fmt.Sprintf("promo:%s", sessionID)
}

// LoadCart returns the session's cart document, creating an empty one for
// a session seen for the first time.
func (s *redisStore) LoadCart(ctx context.Context, sessionID string) (*cart.Document, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var doc cart.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cart document: %w", err)
	}
	if doc.Products == nil {
		doc.Products = map[string]cart.Line{}
	}
	if doc.Samples == nil {
		doc.Samples = []string{}
	}

	return &doc, nil
}

func (s *redisStore) SaveCart(ctx context.Context, sessionID string, doc *cart.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cart document: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *redisStore) DeleteCart(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func (s *redisStore) LoadPromo(ctx context.Context, sessionID string) (*PromoApplication, error) {
	data, err := s.client.Get(ctx, promoKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get promo: %w", err)
	}

	var promo PromoApplication
	if err := json.Unmarshal(data, &promo); err != nil {
		return nil, fmt.Errorf("unmarshal promo application: %w", err)
	}

	return &promo, nil
}

func (s *redisStore) SavePromo(ctx context.Context, sessionID string, promo *PromoApplication) error {
	data, err := json.Marshal(promo)
	if err != nil {
		return fmt.Errorf("marshal promo application: %w", err)
	}

	if err := s.client.Set(ctx, promoKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set promo: %w", err)
	}
	return nil
}

func (s *redisStore) ClearPromo(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, promoKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear promo: %w", err)
	}
	return nil
}
