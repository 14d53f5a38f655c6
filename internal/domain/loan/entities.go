package loan

import (
	"time"

	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/pkg/interest"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound               = errs.New(errs.ErrNotFound, "loan not found")
	ErrFullyPaid              = errs.New(errs.ErrConflict, "loan already fully paid")
	ErrConcurrentModification = errs.New(errs.ErrConcurrentModification, "loan was modified concurrently; retry")
	ErrNotVisible             = errs.New(errs.ErrForbidden, "loan is not accessible to this user")
	ErrNotEligible            = errs.New(errs.ErrInvalidTransition, "application is not eligible for disbursement")
	ErrAlreadyDisbursed       = errs.New(errs.ErrConflict, "application already has a loan")
)

// Table: loans
type Loan struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID             string          `gorm:"column:loan_id;type:char(32);not null;uniqueIndex" json:"loan_id"`
	ApplicationID      string          `gorm:"column:application_id;type:char(32);not null;uniqueIndex" json:"application_id"`
	ApplicantID        string          `gorm:"column:applicant_id;type:char(32);not null;index" json:"applicant_id"`
	ApprovedAmount     decimal.Decimal `gorm:"column:approved_amount;type:decimal(18,2);not null" json:"approved_amount"`
	DisbursementAmount decimal.Decimal `gorm:"column:disbursement_amount;type:decimal(18,2);not null" json:"disbursement_amount"`
	InterestRate       decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,2);not null" json:"interest_rate"`
	Duration           int             `gorm:"column:duration;not null" json:"duration"`
	MonthlyPayment     decimal.Decimal `gorm:"column:monthly_payment;type:decimal(18,2);not null" json:"monthly_payment"`
	TotalRepayment     decimal.Decimal `gorm:"column:total_repayment;type:decimal(20,4);not null" json:"total_repayment"`
	TotalRepaid        decimal.Decimal `gorm:"column:total_repaid;type:decimal(20,4);not null;default:0" json:"total_repaid"`
	NextPaymentDue     *time.Time      `gorm:"column:next_payment_due" json:"next_payment_due,omitempty"`
	IsFullyPaid        bool            `gorm:"column:is_fully_paid;not null;default:false" json:"is_fully_paid"`
	DisbursementDate   time.Time       `gorm:"column:disbursement_date;not null" json:"disbursement_date"`
	ClosedAt           *time.Time      `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedBy          string          `gorm:"column:created_by;type:char(32);not null" json:"created_by"`
	Version            uint64          `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Disbursement describes the release of funds for an approved application.
type Disbursement struct {
	LoanID         string
	ApplicationID  string
	ApplicantID    string
	ApprovedAmount decimal.Decimal
	Amount         decimal.Decimal
	RatePercent    decimal.Decimal
	Months         int
	By             string
	At             time.Time
}

// New creates an active loan whose schedule is computed on the disbursed
// amount. The first payment falls due one month after disbursement.
func New(d Disbursement) (*Loan, error) {
	sched, err := interest.ComputeSchedule(d.Amount, d.RatePercent, d.Months)
	if err != nil {
		return nil, err
	}
	due := d.At.AddDate(0, 1, 0)
	return &Loan{
		LoanID:             d.LoanID,
		ApplicationID:      d.ApplicationID,
		ApplicantID:        d.ApplicantID,
		ApprovedAmount:     d.ApprovedAmount,
		DisbursementAmount: d.Amount,
		InterestRate:       d.RatePercent,
		Duration:           d.Months,
		MonthlyPayment:     sched.Rounded().MonthlyPayment,
		TotalRepayment:     sched.TotalRepayment,
		TotalRepaid:        decimal.Zero,
		NextPaymentDue:     &due,
		DisbursementDate:   d.At,
		CreatedBy:          d.By,
		Version:            1,
	}, nil
}

// State is the lifecycle of a loan: Active or FullyPaid. FullyPaid is terminal.
type State interface{ isState() }

type Active struct {
	NextPaymentDue time.Time
}

type FullyPaid struct {
	ClosedAt time.Time
}

func (Active) isState()    {}
func (FullyPaid) isState() {}

func (l *Loan) State() State {
	if l.IsFullyPaid {
		var closed time.Time
		if l.ClosedAt != nil {
			closed = *l.ClosedAt
		}
		return FullyPaid{ClosedAt: closed}
	}
	var due time.Time
	if l.NextPaymentDue != nil {
		due = *l.NextPaymentDue
	}
	return Active{NextPaymentDue: due}
}

// Outstanding is what remains before the loan counts as fully paid.
func (l *Loan) Outstanding() decimal.Decimal {
	rest := l.DisbursementAmount.Sub(l.TotalRepaid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// Repay books amount against the loan. It reports whether this repayment
// closed the loan. A fully paid loan rejects further repayments.
func (l *Loan) Repay(amount decimal.Decimal, at time.Time) (closed bool, err error) {
	if !amount.IsPositive() {
		return false, errs.Invalid("amount", "must be greater than 0")
	}
	st, ok := l.State().(Active)
	if !ok {
		return false, ErrFullyPaid
	}
	l.TotalRepaid = l.TotalRepaid.Add(amount)
	if l.TotalRepaid.GreaterThanOrEqual(l.DisbursementAmount) {
		l.IsFullyPaid = true
		l.ClosedAt = &at
		l.NextPaymentDue = nil
		return true, nil
	}
	next := st.NextPaymentDue.AddDate(0, 1, 0)
	if st.NextPaymentDue.IsZero() {
		next = at.AddDate(0, 1, 0)
	}
	l.NextPaymentDue = &next
	return false, nil
}

// Table: loan_repayments
type Repayment struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RepaymentID string          `gorm:"column:repayment_id;type:char(32);not null;uniqueIndex" json:"repayment_id"`
	LoanID      string          `gorm:"column:loan_id;type:char(32);not null;index" json:"loan_id"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Reference   string          `gorm:"column:reference;size:64" json:"reference,omitempty"`
	RecordedAt  time.Time       `gorm:"column:recorded_at;not null" json:"recorded_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string { return "loan_repayments" }
