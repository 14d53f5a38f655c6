package review

import "context"

type Repository interface {
	Create(ctx context.Context, r *Review) error
	// ListByApplicationID returns reviews newest first.
	ListByApplicationID(ctx context.Context, applicationID string) ([]Review, error)
}
