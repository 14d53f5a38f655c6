package gormrepo

import (
	"context"

	appDomain "loanflow-backend/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Delete(ctx context.Context, applicationID string) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("application_id = ?", applicationID).
		Delete(&appDomain.Application{}).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out).Error
	if err != nil {
		return nil, notFound(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.ListFilter) ([]appDomain.Application, int64, error) {
	if f.Scope.None {
		return []appDomain.Application{}, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&appDomain.Application{})
	if f.Scope.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.Scope.ApplicantID)
	}
	if f.Scope.AssignedOfficerID != "" {
		q = q.Where("assigned_officer_id = ?", f.Scope.AssignedOfficerID)
	}
	if len(f.Scope.Statuses) > 0 {
		q = q.Where("status IN ?", f.Scope.Statuses)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.Limit)
	out := []appDomain.Application{}
	err := q.Order("submitted_at DESC, id DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// UpdateStatus is a compare-and-set on status: the write only lands while the
// row still holds c.From.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID string, c appDomain.Change) error {
	cols := c.Columns()
	cols["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).Model(&appDomain.Application{}).
		Where("application_id = ? AND status = ?", applicationID, c.From).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&appDomain.Application{}).
		Where("application_id = ?", applicationID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return appDomain.ErrNotFound
	}
	return appDomain.ErrConcurrentModification
}
