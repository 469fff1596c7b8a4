package repository

import (
	"context"
	"time"

	"novella-shop/internal/model"

	"gorm.io/gorm"
)

// EmailJobRepository is the outbox feeding the mailer worker.
type EmailJobRepository interface {
	Enqueue(ctx context.Context, job *model.EmailJob) error
	GetQueued(ctx context.Context, limit int) ([]*model.EmailJob, error)
	MarkSent(ctx context.Context, jobID uint) error
	MarkFailed(ctx context.Context, jobID uint) error
}

type emailJobRepoImpl struct {
	db *gorm.DB
}

func NewEmailJobRepository(db *gorm.DB) EmailJobRepository {
	return &emailJobRepoImpl{db: db}
}

func (r *emailJobRepoImpl) Enqueue(ctx context.Context, job *model.EmailJob) error {
	job.Status = model.EmailJobStatusQueued
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *emailJobRepoImpl) GetQueued(ctx context.Context, limit int) ([]*model.EmailJob, error) {
	var jobs []*model.EmailJob
	err := r.db.WithContext(ctx).
		Where("status = ?", model.EmailJobStatusQueued).
		Order("id").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *emailJobRepoImpl) MarkSent(ctx context.Context, jobID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.EmailJobStatusSent,
			"sent_at":    &now,
			"updated_at": now,
		}).Error
}

func (r *emailJobRepoImpl) MarkFailed(ctx context.Context, jobID uint) error {
	return r.db.WithContext(ctx).Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.EmailJobStatusFailed,
			"updated_at": time.Now(),
		}).Error
}
