package repository

import (
	"context"
	"time"

	"novella-shop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventRepository is the durable dedup set for provider callbacks.
type WebhookEventRepository interface {
	Exists(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID, eventType string) error
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) Exists(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *webhookEventRepoImpl) MarkProcessed(ctx context.Context, provider, eventID, eventType string) error {
	// providers redeliver; a second insert of the same event is not an error
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.WebhookEvent{
			EventID:     eventID,
			Provider:    provider,
			EventType:   eventType,
			ProcessedAt: time.Now(),
		}).Error
}
