package gormrepo

import (
	"context"

	"loanflow-backend/internal/domain/activity"

	"gorm.io/gorm"
)

type ActivityRepository struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) CreateNotification(ctx context.Context, n *activity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *ActivityRepository) CreateAudit(ctx context.Context, a *activity.AuditLog) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ActivityRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]activity.Notification, error) {
	_, size := paginate(1, limit)
	out := []activity.Notification{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(size).
		Find(&out).Error
	return out, err
}
