package repository

import (
	"context"
	"time"

	"novella-shop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// CreateWithLines writes the order and all of its line rows atomically.
	CreateWithLines(ctx context.Context, order *model.Order, items []*model.OrderItem, samples []*model.OrderSample, gift *model.OrderGift) error
	// Delete removes the order and its lines; the compensating action when
	// payment creation fails after the order row was written.
	Delete(ctx context.Context, orderID uint) error

	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error)
	GetItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error)
	GetSamples(ctx context.Context, orderID uint) ([]*model.OrderSample, error)
	GetGift(ctx context.Context, orderID uint) (*model.OrderGift, error)

	SetPaymentRef(ctx context.Context, orderID uint, provider, paymentID string) error

	// MarkProcessing locks the order row and applies pending→processing,
	// recording the provider payment id. Returns the row and whether a
	// transition happened; an order already processing is left untouched.
	MarkProcessing(ctx context.Context, orderID uint, provider, paymentID string) (*model.Order, bool, error)
	// MarkCancelled locks the order row and applies the cancellation;
	// an order already cancelled is left untouched.
	MarkCancelled(ctx context.Context, orderID uint) (*model.Order, bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) CreateWithLines(ctx context.Context, order *model.Order, items []*model.OrderItem, samples []*model.OrderSample, gift *model.OrderGift) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		for _, sample := range samples {
			sample.OrderID = order.ID
		}
		if len(samples) > 0 {
			if err := tx.Create(&samples).Error; err != nil {
				return err
			}
		}

		if gift != nil {
			gift.OrderID = order.ID
			if err := tx.Create(gift).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *orderRepoImpl) Delete(ctx context.Context, orderID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderSample{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderGift{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", orderID).Delete(&model.Order{}).Error
	})
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByIDForUser(ctx context.Context, orderID, userID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetItems(ctx context.Context, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) GetSamples(ctx context.Context, orderID uint) ([]*model.OrderSample, error) {
	var samples []*model.OrderSample
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&samples).Error

	if err != nil {
		return nil, err
	}

	return samples, nil
}

func (r *orderRepoImpl) GetGift(ctx context.Context, orderID uint) (*model.OrderGift, error) {
	var gift model.OrderGift
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&gift).Error

	if err != nil {
		return nil, err
	}

	return &gift, nil
}

func (r *orderRepoImpl) SetPaymentRef(ctx context.Context, orderID uint, provider, paymentID string) error {
	updates := map[string]interface{}{
		"payment_provider": provider,
		"updated_at":       time.Now(),
	}
	switch provider {
	case model.PaymentProviderStripe:
		updates["stripe_payment_id"] = paymentID
		updates["yookassa_payment_id"] = ""
	case model.PaymentProviderYookassa:
		updates["yookassa_payment_id"] = paymentID
		updates["stripe_payment_id"] = ""
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) MarkProcessing(ctx context.Context, orderID uint, provider, paymentID string) (*model.Order, bool, error) {
	var order model.Order
	transitioned := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error; err != nil {
			return err
		}

		if order.Status == model.OrderStatusProcessing {
			return nil
		}

		updates := map[string]interface{}{
			"status":     model.OrderStatusProcessing,
			"updated_at": time.Now(),
		}
		switch provider {
		case model.PaymentProviderStripe:
			updates["stripe_payment_id"] = paymentID
		case model.PaymentProviderYookassa:
			updates["yookassa_payment_id"] = paymentID
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		transitioned = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	return &order, transitioned, nil
}

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, orderID uint) (*model.Order, bool, error) {
	var order model.Order
	transitioned := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error; err != nil {
			return err
		}

		if order.Status == model.OrderStatusCancelled {
			return nil
		}

		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":     model.OrderStatusCancelled,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}

		transitioned = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	return &order, transitioned, nil
}
