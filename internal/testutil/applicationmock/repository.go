package applicationmock

import (
	"context"
	"errors"

	domain "loanflow-backend/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("applicationmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Create and Delete succeed by default; lookups return errUnimplemented.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	DeleteFn                      func(ctx context.Context, applicationID string) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	ListFn                        func(ctx context.Context, f domain.ListFilter) ([]domain.Application, int64, error)
	UpdateStatusFn                func(ctx context.Context, applicationID string, c domain.Change) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, applicationID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, applicationID)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Application, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) UpdateStatus(ctx context.Context, applicationID string, c domain.Change) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, applicationID, c)
	}
	return errUnimplemented
}
