package service

import (
	"context"
	"errors"
	"fmt"

	"novella-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingService resolves the unit price for a (perfume, capacity) pair:
// the variant's override price when one is set, otherwise the perfume's
// discounted base price. Callers snapshot the result; later catalog edits
// never reprice an existing cart or order.
type PricingService interface {
	Price(ctx context.Context, perfumeID, capacityID uint) (decimal.Decimal, error)
}

type pricingServiceImpl struct {
	catalogRepo repository.CatalogRepository
}

func NewPricingService(catalogRepo repository.CatalogRepository) PricingService {
	return &pricingServiceImpl{
		catalogRepo: catalogRepo,
	}
}

func (s *pricingServiceImpl) Price(ctx context.Context, perfumeID, capacityID uint) (decimal.Decimal, error) {
	perfume, err := s.catalogRepo.FindPerfume(ctx, perfumeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("find perfume %d: %w", perfumeID, err)
	}

	variant, err := s.catalogRepo.FindVariant(ctx, perfumeID, capacityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return perfume.DiscountedPrice(), nil
		}
		return decimal.Zero, fmt.Errorf("find variant %d_%d: %w", perfumeID, capacityID, err)
	}

	if !variant.Price.IsZero() {
		return variant.Price, nil
	}

	return perfume.DiscountedPrice(), nil
}
