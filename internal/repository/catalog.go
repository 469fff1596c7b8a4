package repository

import (
	"context"

	"novella-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository reads the sellable inventory: perfumes, their capacity
// variants, samples and gift wraps.
type CatalogRepository interface {
	Seed(ctx context.Context) error

	FindPerfume(ctx context.Context, perfumeID uint) (*model.Perfume, error)
	FindCapacity(ctx context.Context, capacityID uint) (*model.Capacity, error)
	FindVariant(ctx context.Context, perfumeID, capacityID uint) (*model.PerfumeCapacity, error)
	FindSample(ctx context.Context, sampleID uint) (*model.Sample, error)
	FindGift(ctx context.Context, giftID uint) (*model.Gift, error)
	ListAvailableSamples(ctx context.Context) ([]*model.Sample, error)
	ListAvailableGifts(ctx context.Context) ([]*model.Gift, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	perfumes := []model.Perfume{
		{ID: 1, Name: "Acqua di Colonia", Slug: "acqua-di-colonia", Price: decimal.NewFromInt(120), Discount: decimal.Zero},
		{ID: 2, Name: "Rosa Gardenia", Slug: "rosa-gardenia", Price: decimal.NewFromInt(140), Discount: decimal.NewFromInt(10)},
	}
	capacities := []model.Capacity{
		{ID: 1, Volume: "50ml"},
		{ID: 2, Volume: "100ml"},
	}
	variants := []model.PerfumeCapacity{
		{PerfumeID: 1, CapacityID: 1, Quantity: 25, Available: true},
		{PerfumeID: 1, CapacityID: 2, Price: decimal.NewFromInt(180), Quantity: 10, Available: true},
		{PerfumeID: 2, CapacityID: 1, Quantity: 15, Available: true},
	}
	samples := []model.Sample{
		{ID: 1, Name: "Melograno Sample", Slug: "melograno-sample", Available: true},
		{ID: 2, Name: "Tabacco Toscano Sample", Slug: "tabacco-toscano-sample", Available: true},
		{ID: 3, Name: "Angeli di Firenze Sample", Slug: "angeli-di-firenze-sample", Available: true},
	}
	gifts := []model.Gift{
		{ID: 1, Name: "Classic Gift Wrap", Slug: "classic-gift-wrap", Description: "Paper wrap with ribbon", Price: decimal.NewFromInt(5), Available: true},
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, records := range []interface{}{&perfumes, &capacities, &variants, &samples, &gifts} {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(records).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *catalogRepoImpl) FindPerfume(ctx context.Context, perfumeID uint) (*model.Perfume, error) {
	var perfume model.Perfume
	err := r.db.WithContext(ctx).
		Where("id = ?", perfumeID).
		First(&perfume).Error

	if err != nil {
		return nil, err
	}

	return &perfume, nil
}

func (r *catalogRepoImpl) FindCapacity(ctx context.Context, capacityID uint) (*model.Capacity, error) {
	var capacity model.Capacity
	err := r.db.WithContext(ctx).
		Where("id = ?", capacityID).
		First(&capacity).Error

	if err != nil {
		return nil, err
	}

	return &capacity, nil
}

func (r *catalogRepoImpl) FindVariant(ctx context.Context, perfumeID, capacityID uint) (*model.PerfumeCapacity, error) {
	var variant model.PerfumeCapacity
	err := r.db.WithContext(ctx).
		Where("perfume_id = ? AND capacity_id = ?", perfumeID, capacityID).
		First(&variant).Error

	if err != nil {
		return nil, err
	}

	return &variant, nil
}

func (r *catalogRepoImpl) FindSample(ctx context.Context, sampleID uint) (*model.Sample, error) {
	var sample model.Sample
	err := r.db.WithContext(ctx).
		Where("id = ?", sampleID).
		First(&sample).Error

	if err != nil {
		return nil, err
	}

	return &sample, nil
}

func (r *catalogRepoImpl) FindGift(ctx context.Context, giftID uint) (*model.Gift, error) {
	var gift model.Gift
	err := r.db.WithContext(ctx).
		Where("id = ?", giftID).
		First(&gift).Error

	if err != nil {
		return nil, err
	}

	return &gift, nil
}

func (r *catalogRepoImpl) ListAvailableSamples(ctx context.Context) ([]*model.Sample, error) {
	var samples []*model.Sample
	err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("name").
		Find(&samples).Error

	if err != nil {
		return nil, err
	}

	return samples, nil
}

func (r *catalogRepoImpl) ListAvailableGifts(ctx context.Context) ([]*model.Gift, error) {
	var gifts []*model.Gift
	err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("name").
		Find(&gifts).Error

	if err != nil {
		return nil, err
	}

	return gifts, nil
}
