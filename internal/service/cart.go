package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"novella-shop/internal/cart"
	"novella-shop/internal/repository"
	"novella-shop/internal/session"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EntryTypeProduct = "product"
	EntryTypeSample  = "sample"
	EntryTypeGift    = "gift"
)

// CartEntry is one normalized row of the enumerated cart: a product line,
// a sample pick or the gift wrap.
type CartEntry struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	PerfumeID  uint            `json:"perfume_id,omitempty"`
	CapacityID uint            `json:"capacity_id,omitempty"`
	SampleID   uint            `json:"sample_id,omitempty"`
	GiftID     uint            `json:"gift_id,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartView is the cart document enumerated against the live catalog.
type CartView struct {
	Entries             []CartEntry     `json:"entries"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Len                 int             `json:"len"`
	SpecialInstructions string          `json:"special_instructions"`
}

type CartService interface {
	Get(ctx context.Context, sessionID string) (*CartView, error)
	Add(ctx context.Context, sessionID string, perfumeID, capacityID uint, quantity int, override bool) error
	Remove(ctx context.Context, sessionID string, perfumeID, capacityID uint) error
	UpdateQuantity(ctx context.Context, sessionID string, perfumeID, capacityID uint, quantity int) error
	ToggleSample(ctx context.Context, sessionID string, sampleID uint) error
	RemoveSample(ctx context.Context, sessionID string, sampleID uint) error
	ToggleGift(ctx context.Context, sessionID string, giftID uint) error
	RemoveGift(ctx context.Context, sessionID string) error
	SetSpecialInstructions(ctx context.Context, sessionID, text string) error
	Clear(ctx context.Context, sessionID string) error

	// Enumerate resolves a document against the catalog; stale references
	// are dropped, not errored.
	Enumerate(ctx context.Context, doc *cart.Document) ([]CartEntry, error)
	TotalPrice(entries []CartEntry) decimal.Decimal
}

type cartServiceImpl struct {
	store       session.Store
	catalogRepo repository.CatalogRepository
	pricing     PricingService
}

func NewCartService(store session.Store, catalogRepo repository.CatalogRepository, pricing PricingService) CartService {
	return &cartServiceImpl{
		store:       store,
		catalogRepo: catalogRepo,
		pricing:     pricing,
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, sessionID string) (*CartView, error) {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entries, err := s.Enumerate(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &CartView{
		Entries:             entries,
		TotalPrice:          s.TotalPrice(entries),
		Len:                 doc.Len(),
		SpecialInstructions: doc.SpecialInstructions,
	}, nil
}

func (s *cartServiceImpl) Add(ctx context.Context, sessionID string, perfumeID, capacityID uint, quantity int, override bool) error {
	variant, err := s.catalogRepo.FindVariant(ctx, perfumeID, capacityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVariantUnavailable
		}
		return fmt.Errorf("find variant: %w", err)
	}
	if !variant.Available || variant.Quantity < quantity {
		return ErrVariantUnavailable
	}

	price, err := s.pricing.Price(ctx, perfumeID, capacityID)
	if err != nil {
		return fmt.Errorf("resolve price: %w", err)
	}

	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.Add(perfumeID, capacityID, price, quantity, override)
	return s.store.SaveCart(ctx, sessionID, doc)
}

// Remove drops the product line and, with it, every sample and the gift
// wrap. The add-ons are tied to having perfume in the cart.
func (s *cartServiceImpl) Remove(ctx context.Context, sessionID string, perfumeID, capacityID uint) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.Remove(perfumeID, capacityID)
	doc.RemoveAllSamples()
	doc.RemoveGiftWrap()
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, sessionID string, perfumeID, capacityID uint, quantity int) error {
	variant, err := s.catalogRepo.FindVariant(ctx, perfumeID, capacityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVariantUnavailable
		}
		return fmt.Errorf("find variant: %w", err)
	}
	if !variant.Available || variant.Quantity < quantity {
		return ErrVariantUnavailable
	}

	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.UpdateQuantity(perfumeID, capacityID, quantity)
	return s.store.SaveCart(ctx, sessionID, doc)
}

// ToggleSample removes an already-picked sample, otherwise adds it with
// FIFO eviction of the oldest pick when both slots are taken. Samples ride
// along with perfume only.
func (s *cartServiceImpl) ToggleSample(ctx context.Context, sessionID string, sampleID uint) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if doc.IsEmpty() {
		return ErrEmptyCart
	}

	id := strconv.FormatUint(uint64(sampleID), 10)
	if doc.HasSample(id) {
		doc.RemoveSample(id)
	} else {
		doc.ReplaceSample(id)
	}
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) RemoveSample(ctx context.Context, sessionID string, sampleID uint) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.RemoveSample(strconv.FormatUint(uint64(sampleID), 10))
	return s.store.SaveCart(ctx, sessionID, doc)
}

// ToggleGift clears the slot when the same gift is selected again,
// otherwise overwrites it. Like samples, a gift needs perfume in the cart.
func (s *cartServiceImpl) ToggleGift(ctx context.Context, sessionID string, giftID uint) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if doc.IsEmpty() {
		return ErrEmptyCart
	}

	id := strconv.FormatUint(uint64(giftID), 10)
	if doc.GiftWrap == id {
		doc.RemoveGiftWrap()
	} else {
		doc.SetGiftWrap(id)
	}
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) RemoveGift(ctx context.Context, sessionID string) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.RemoveGiftWrap()
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) SetSpecialInstructions(ctx context.Context, sessionID, text string) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.SetSpecialInstructions(text)
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) Clear(ctx context.Context, sessionID string) error {
	doc, err := s.store.LoadCart(ctx, sessionID)
	if err != nil {
		return err
	}

	doc.Clear()
	return s.store.SaveCart(ctx, sessionID, doc)
}

func (s *cartServiceImpl) Enumerate(ctx context.Context, doc *cart.Document) ([]CartEntry, error) {
	entries := make([]CartEntry, 0, len(doc.Products)+len(doc.Samples)+1)

	keys := make([]string, 0, len(doc.Products))
	for key := range doc.Products {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		line := doc.Products[key]

		perfume, err := s.catalogRepo.FindPerfume(ctx, line.PerfumeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // vanished from the catalog, drop silently
			}
			return nil, fmt.Errorf("find perfume: %w", err)
		}
		capacity, err := s.catalogRepo.FindCapacity(ctx, line.CapacityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("find capacity: %w", err)
		}

		price := line.UnitPrice()
		entries = append(entries, CartEntry{
			Type:       EntryTypeProduct,
			Key:        key,
			Name:       fmt.Sprintf("%s - %s", perfume.Name, capacity.Volume),
			PerfumeID:  line.PerfumeID,
			CapacityID: line.CapacityID,
			Quantity:   line.Quantity,
			Price:      price,
			TotalPrice: price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	for _, idStr := range doc.Samples {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			continue
		}
		sample, err := s.catalogRepo.FindSample(ctx, uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("find sample: %w", err)
		}

		entries = append(entries, CartEntry{
			Type:       EntryTypeSample,
			Key:        "sample_" + idStr,
			Name:       sample.Name,
			SampleID:   sample.ID,
			Quantity:   1,
			Price:      decimal.Zero,
			TotalPrice: decimal.Zero,
		})
	}

	if doc.GiftWrap != "" {
		if id, err := strconv.ParseUint(doc.GiftWrap, 10, 32); err == nil {
			gift, err := s.catalogRepo.FindGift(ctx, uint(id))
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("find gift: %w", err)
			}
			if err == nil {
				entries = append(entries, CartEntry{
					Type:       EntryTypeGift,
					Key:        "gift_" + doc.GiftWrap,
					Name:       gift.Name,
					GiftID:     gift.ID,
					Quantity:   1,
					Price:      gift.Price,
					TotalPrice: gift.Price,
				})
			}
		}
	}

	return entries, nil
}

func (s *cartServiceImpl) TotalPrice(entries []CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.TotalPrice)
	}
	return total
}
