package service

import (
	"context"
	"errors"
	"fmt"

	"novella-shop/internal/model"
	"novella-shop/internal/repository"
	"novella-shop/internal/session"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoService validates promo codes and keeps the applied one in the
// session, separate from the cart document. The discount is multiplied
// into totals at read time only.
type PromoService interface {
	// Apply validates the code; on success the application is saved in the
	// session, on ErrInvalidPromoCode any previous application is cleared.
	Apply(ctx context.Context, sessionID, code string) (decimal.Decimal, error)
	// CurrentDiscount re-validates the session's applied code against the
	// catalog; a stale or missing code yields zero and clears the session.
	CurrentDiscount(ctx context.Context, sessionID string) (decimal.Decimal, error)
	// Resolve returns the still-active promo row behind the session
	// application, or nil when none is applied.
	Resolve(ctx context.Context, sessionID string) (*model.PromoCode, error)
	Clear(ctx context.Context, sessionID string) error
}

type promoServiceImpl struct {
	store     session.Store
	promoRepo repository.PromoRepository
}

func NewPromoService(store session.Store, promoRepo repository.PromoRepository) PromoService {
	return &promoServiceImpl{
		store:     store,
		promoRepo: promoRepo,
	}
}

func (s *promoServiceImpl) Apply(ctx context.Context, sessionID, code string) (decimal.Decimal, error) {
	promo, err := s.promoRepo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if clearErr := s.store.ClearPromo(ctx, sessionID); clearErr != nil {
				return decimal.Zero, clearErr
			}
			return decimal.Zero, ErrInvalidPromoCode
		}
		return decimal.Zero, fmt.Errorf("find promo code: %w", err)
	}

	err = s.store.SavePromo(ctx, sessionID, &session.PromoApplication{
		Code:               promo.Code,
		DiscountPercentage: promo.DiscountPercentage.String(),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return promo.DiscountPercentage, nil
}

func (s *promoServiceImpl) CurrentDiscount(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	promo, err := s.Resolve(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	if promo == nil {
		return decimal.Zero, nil
	}

	return promo.DiscountPercentage, nil
}

func (s *promoServiceImpl) Resolve(ctx context.Context, sessionID string) (*model.PromoCode, error) {
	applied, err := s.store.LoadPromo(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	promo, err := s.promoRepo.FindActiveByCode(ctx, applied.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// code deactivated since it was applied
			if clearErr := s.store.ClearPromo(ctx, sessionID); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	return promo, nil
}

func (s *promoServiceImpl) Clear(ctx context.Context, sessionID string) error {
	return s.store.ClearPromo(ctx, sessionID)
}
