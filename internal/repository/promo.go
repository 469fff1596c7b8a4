package repository

import (
	"context"

	"novella-shop/internal/model"

	"gorm.io/gorm"
)

type PromoRepository interface {
	FindActiveByCode(ctx context.Context, code string) (*model.PromoCode, error)
}

type promoRepoImpl struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepoImpl{
		db: db,
	}
}

func (r *promoRepoImpl) FindActiveByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&promo).Error

	if err != nil {
		return nil, err
	}

	return &promo, nil
}
