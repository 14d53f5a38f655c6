package application

import "context"

type ListFilter struct {
	Scope  Scope
	Status Status
	Page   int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, a *Application) error
	// Delete removes the row permanently. Only used to compensate a failed
	// submission, before any loan can reference it.
	Delete(ctx context.Context, applicationID string) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	List(ctx context.Context, f ListFilter) ([]Application, int64, error)
	// UpdateStatus writes c only while the row still holds c.From and bumps
	// the version; otherwise it returns ErrConcurrentModification.
	UpdateStatus(ctx context.Context, applicationID string, c Change) error
}
