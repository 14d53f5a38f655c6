package gormrepo

import (
	"context"

	reviewDomain "loanflow-backend/internal/domain/review"

	"gorm.io/gorm"
)

type ReviewRepository struct{ db *gorm.DB }

func NewReviewRepository(db *gorm.DB) *ReviewRepository { return &ReviewRepository{db: db} }

func (r *ReviewRepository) Create(ctx context.Context, rv *reviewDomain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]reviewDomain.Review, error) {
	out := []reviewDomain.Review{}
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("reviewed_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
