package interestrate

import "context"

type Repository interface {
	Create(ctx context.Context, r *InterestRate) error
	GetByRateID(ctx context.Context, rateID string) (*InterestRate, error)
	// GetActive returns the active rate for months or ErrNotFound.
	GetActive(ctx context.Context, months int) (*InterestRate, error)
	// DeactivateActive clears the active flag on every active row for months.
	DeactivateActive(ctx context.Context, months int) (int64, error)
	List(ctx context.Context, activeOnly bool) ([]InterestRate, error)
	// SoftDelete deactivates the row and marks it deleted.
	SoftDelete(ctx context.Context, rateID string) error
}
