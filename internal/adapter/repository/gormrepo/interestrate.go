package gormrepo

import (
	"context"
	"errors"

	rateDomain "loanflow-backend/internal/domain/interestrate"

	"gorm.io/gorm"
)

type InterestRateRepository struct{ db *gorm.DB }

// inactive clears both the flag and the unique active_months slot.
func inactive() map[string]any {
	return map[string]any{"is_active": false, "active_months": nil}
}

func NewInterestRateRepository(db *gorm.DB) *InterestRateRepository {
	return &InterestRateRepository{db: db}
}

func (r *InterestRateRepository) Create(ctx context.Context, ir *rateDomain.InterestRate) error {
	err := r.db.WithContext(ctx).Create(ir).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return rateDomain.ErrActiveExists
	}
	return err
}

func (r *InterestRateRepository) GetByRateID(ctx context.Context, rateID string) (*rateDomain.InterestRate, error) {
	var out rateDomain.InterestRate
	err := r.db.WithContext(ctx).Where("rate_id = ?", rateID).First(&out).Error
	if err != nil {
		return nil, notFound(err, rateDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InterestRateRepository) GetActive(ctx context.Context, months int) (*rateDomain.InterestRate, error) {
	var out rateDomain.InterestRate
	err := r.db.WithContext(ctx).
		Where("months = ? AND is_active = ?", months, true).
		Order("created_at DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err, rateDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *InterestRateRepository) DeactivateActive(ctx context.Context, months int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&rateDomain.InterestRate{}).
		Where("months = ? AND is_active = ?", months, true).
		Updates(inactive())
	return res.RowsAffected, res.Error
}

func (r *InterestRateRepository) List(ctx context.Context, activeOnly bool) ([]rateDomain.InterestRate, error) {
	q := r.db.WithContext(ctx).Model(&rateDomain.InterestRate{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	out := []rateDomain.InterestRate{}
	err := q.Order("months ASC, created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *InterestRateRepository) SoftDelete(ctx context.Context, rateID string) error {
	res := r.db.WithContext(ctx).Model(&rateDomain.InterestRate{}).
		Where("rate_id = ?", rateID).
		Updates(inactive())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return rateDomain.ErrNotFound
	}
	return r.db.WithContext(ctx).Where("rate_id = ?", rateID).Delete(&rateDomain.InterestRate{}).Error
}
