package loan

import "context"

type ListFilter struct {
	ApplicantID string
	// AssignedOfficerID limits to loans of applications assigned to the officer.
	AssignedOfficerID string
	Page              int
	Limit             int
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]Loan, int64, error)
	// Update persists repayment state only if the row still carries
	// expectedVersion, then bumps the version.
	Update(ctx context.Context, l *Loan, expectedVersion uint64) error
	CreateRepayment(ctx context.Context, r *Repayment) error
	ListRepayments(ctx context.Context, loanID string) ([]Repayment, error)
}
