package gormrepo

import (
	"context"

	appDomain "loanflow-backend/internal/domain/application"
	loanDomain "loanflow-backend/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.ListFilter) ([]loanDomain.Loan, int64, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{})
	if f.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.ApplicantID)
	}
	if f.AssignedOfficerID != "" {
		assigned := r.db.WithContext(ctx).Model(&appDomain.Application{}).
			Select("application_id").
			Where("assigned_officer_id = ?", f.AssignedOfficerID)
		q = q.Where("application_id IN (?)", assigned)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(f.Page, f.Limit)
	out := []loanDomain.Loan{}
	err := q.Order("disbursement_date DESC, id DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// Update writes the repayment state guarded by an optimistic version check.
func (r *LoanRepository) Update(ctx context.Context, l *loanDomain.Loan, expectedVersion uint64) error {
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("loan_id = ? AND version = ?", l.LoanID, expectedVersion).
		Updates(map[string]any{
			"total_repaid":     l.TotalRepaid,
			"next_payment_due": l.NextPaymentDue,
			"is_fully_paid":    l.IsFullyPaid,
			"closed_at":        l.ClosedAt,
			"version":          expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConcurrentModification
	}
	l.Version = expectedVersion + 1
	return nil
}

func (r *LoanRepository) CreateRepayment(ctx context.Context, p *loanDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LoanRepository) ListRepayments(ctx context.Context, loanID string) ([]loanDomain.Repayment, error) {
	out := []loanDomain.Repayment{}
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("recorded_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
