package loan

import (
	"time"

	appDomain "loanflow-backend/internal/domain/application"
	loanDomain "loanflow-backend/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type DisburseInput struct {
	ApplicationID string
	// Amount defaults to the approved amount.
	Amount *decimal.Decimal
	// Expected, when set, must match the stored status.
	Expected *appDomain.Status
}

type RepaymentInput struct {
	LoanID    string
	Amount    decimal.Decimal
	Reference string
}

type RepaymentResult struct {
	Loan      LoanDTO              `json:"loan"`
	Repayment loanDomain.Repayment `json:"repayment"`
	Closed    bool                 `json:"closed"`
}

type ListInput struct {
	Page  int
	Limit int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ListResult struct {
	Loans      []LoanDTO  `json:"loans"`
	Pagination Pagination `json:"pagination"`
}

type LoanDTO struct {
	LoanID             string          `json:"loan_id"`
	ApplicationID      string          `json:"application_id"`
	ApplicantID        string          `json:"applicant_id"`
	ApprovedAmount     decimal.Decimal `json:"approved_amount"`
	DisbursementAmount decimal.Decimal `json:"disbursement_amount"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	Duration           int             `json:"duration"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	TotalRepayment     decimal.Decimal `json:"total_repayment"`
	TotalRepaid        decimal.Decimal `json:"total_repaid"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	State              string          `json:"state"`
	NextPaymentDue     *time.Time      `json:"next_payment_due,omitempty"`
	IsFullyPaid        bool            `json:"is_fully_paid"`
	DisbursementDate   time.Time       `json:"disbursement_date"`
	ClosedAt           *time.Time      `json:"closed_at,omitempty"`
	Version            uint64          `json:"version"`
}

type DetailDTO struct {
	LoanDTO
	Repayments []loanDomain.Repayment `json:"repayments"`
}

func toDTO(l *loanDomain.Loan) LoanDTO {
	state := "ACTIVE"
	if _, ok := l.State().(loanDomain.FullyPaid); ok {
		state = "FULLY_PAID"
	}
	return LoanDTO{
		LoanID:             l.LoanID,
		ApplicationID:      l.ApplicationID,
		ApplicantID:        l.ApplicantID,
		ApprovedAmount:     l.ApprovedAmount,
		DisbursementAmount: l.DisbursementAmount,
		InterestRate:       l.InterestRate,
		Duration:           l.Duration,
		MonthlyPayment:     l.MonthlyPayment,
		TotalRepayment:     l.TotalRepayment,
		TotalRepaid:        l.TotalRepaid,
		Outstanding:        l.Outstanding(),
		State:              state,
		NextPaymentDue:     l.NextPaymentDue,
		IsFullyPaid:        l.IsFullyPaid,
		DisbursementDate:   l.DisbursementDate,
		ClosedAt:           l.ClosedAt,
		Version:            l.Version,
	}
}
