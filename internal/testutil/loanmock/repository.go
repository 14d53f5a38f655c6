package loanmock

import (
	"context"

	domain "loanflow-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes succeed by default; lookups return domain.ErrNotFound.
type Repo struct {
	CreateFn             func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn        func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.Loan, error)
	ListFn               func(ctx context.Context, f domain.ListFilter) ([]domain.Loan, int64, error)
	UpdateFn             func(ctx context.Context, l *domain.Loan, expectedVersion uint64) error
	CreateRepaymentFn    func(ctx context.Context, r *domain.Repayment) error
	ListRepaymentsFn     func(ctx context.Context, loanID string) ([]domain.Repayment, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Loan, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Loan, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *Repo) Update(ctx context.Context, l *domain.Loan, expectedVersion uint64) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, l, expectedVersion)
	}
	l.Version = expectedVersion + 1
	return nil
}

func (m *Repo) CreateRepayment(ctx context.Context, r *domain.Repayment) error {
	if m.CreateRepaymentFn != nil {
		return m.CreateRepaymentFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListRepayments(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	if m.ListRepaymentsFn != nil {
		return m.ListRepaymentsFn(ctx, loanID)
	}
	return nil, nil
}
