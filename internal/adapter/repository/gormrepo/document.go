package gormrepo

import (
	"context"

	docDomain "loanflow-backend/internal/domain/document"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, d *docDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DocumentRepository) Save(ctx context.Context, d *docDomain.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {
	res := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&docDomain.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return docDomain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) DeleteByApplicationID(ctx context.Context, applicationID string) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("application_id = ?", applicationID).
		Delete(&docDomain.Document{}).Error
}

func (r *DocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*docDomain.Document, error) {
	var out docDomain.Document
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&out).Error
	if err != nil {
		return nil, notFound(err, docDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *DocumentRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]docDomain.Document, error) {
	out := []docDomain.Document{}
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *DocumentRepository) ExistsOfType(ctx context.Context, applicationID string, t docDomain.Type) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&docDomain.Document{}).
		Where("application_id = ? AND type = ?", applicationID, t).
		Count(&n).Error
	return n > 0, err
}
