package application

import (
	"strings"
	"time"

	"loanflow-backend/internal/domain/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending                 Status = "PENDING"
	StatusUnderReview             Status = "UNDER_REVIEW"
	StatusAdditionalInfoRequested Status = "ADDITIONAL_INFO_REQUESTED"
	StatusApproved                Status = "APPROVED"
	StatusRejected                Status = "REJECTED"
	StatusDisbursed               Status = "DISBURSED"
	StatusClosed                  Status = "CLOSED"
)

var Statuses = []Status{
	StatusPending, StatusUnderReview, StatusAdditionalInfoRequested,
	StatusApproved, StatusRejected, StatusDisbursed, StatusClosed,
}

var (
	ErrNotFound               = errs.New(errs.ErrNotFound, "application not found")
	ErrNotVisible             = errs.New(errs.ErrForbidden, "application is not accessible to this user")
	ErrConcurrentModification = errs.New(errs.ErrConcurrentModification, "application was modified concurrently; reload and retry")
	ErrUnknownStatus          = errs.New(errs.ErrValidation, "unknown application status")
)

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrUnknownStatus
	}
	return st, nil
}

// Table: loan_applications
type Application struct {
	ID                       uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ApplicationID            string          `gorm:"column:application_id;type:char(32);not null;uniqueIndex" json:"application_id"`
	ApplicantID              string          `gorm:"column:applicant_id;type:char(32);not null;index" json:"applicant_id"`
	AssignedOfficerID        *string         `gorm:"column:assigned_officer_id;type:char(32);index" json:"assigned_officer_id"`
	Amount                   decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Duration                 int             `gorm:"column:duration;not null" json:"duration"`
	InterestRate             decimal.Decimal `gorm:"column:interest_rate;type:decimal(6,2);not null" json:"interest_rate"`
	MonthlyIncome            decimal.Decimal `gorm:"column:monthly_income;type:decimal(18,2);not null" json:"monthly_income"`
	EmploymentStatus         string          `gorm:"column:employment_status;size:40;not null" json:"employment_status"`
	Purpose                  string          `gorm:"column:purpose;type:text" json:"purpose"`
	FirstName                string          `gorm:"column:first_name;size:100;not null" json:"first_name"`
	LastName                 string          `gorm:"column:last_name;size:100;not null" json:"last_name"`
	Phone                    string          `gorm:"column:phone;size:32;not null" json:"phone"`
	Address                  string          `gorm:"column:address;type:text" json:"address"`
	AccountNumber            string          `gorm:"column:account_number;size:20;not null" json:"account_number"`
	BankName                 string          `gorm:"column:bank_name;size:100;not null" json:"bank_name"`
	BVN                      *string         `gorm:"column:bvn;size:11" json:"bvn,omitempty"`
	NIN                      *string         `gorm:"column:nin;size:11" json:"nin,omitempty"`
	Status                   Status          `gorm:"column:status;size:32;not null;index" json:"status"`
	AdditionalInfoRequested  bool            `gorm:"column:additional_info_requested;not null;default:false" json:"additional_info_requested"`
	AdditionalInfoNote       string          `gorm:"column:additional_info_note;type:text" json:"additional_info_note,omitempty"`
	AdditionalInfoProvidedAt *time.Time      `gorm:"column:additional_info_provided_at" json:"additional_info_provided_at,omitempty"`
	Version                  uint64          `gorm:"column:version;not null;default:1" json:"version"`
	SubmittedAt              time.Time       `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	StatusUpdatedAt          time.Time       `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt                time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt                gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}

func (Application) TableName() string { return "loan_applications" }

func (a *Application) OwnedBy(userID string) bool { return a.ApplicantID == userID }

func (a *Application) AssignedTo(userID string) bool {
	return a.AssignedOfficerID != nil && *a.AssignedOfficerID == userID
}

// Change is one edge taken by the state machine.
type Change struct {
	From Status
	To   Status
	Note string
	At   time.Time
}

// Columns returns the column updates written together with the status.
// Entering ADDITIONAL_INFO_REQUESTED raises the request flag; leaving it
// clears the flag and stamps when the info arrived.
func (c Change) Columns() map[string]any {
	cols := map[string]any{
		"status":            c.To,
		"status_updated_at": c.At,
	}
	if c.To == StatusAdditionalInfoRequested {
		cols["additional_info_requested"] = true
		cols["additional_info_note"] = c.Note
	}
	if c.From == StatusAdditionalInfoRequested {
		cols["additional_info_requested"] = false
		cols["additional_info_note"] = ""
		cols["additional_info_provided_at"] = c.At
	}
	return cols
}

// Apply mirrors a committed Change onto the in-memory record.
func (a *Application) Apply(c Change) {
	a.Status = c.To
	a.StatusUpdatedAt = c.At
	a.Version++
	if c.To == StatusAdditionalInfoRequested {
		a.AdditionalInfoRequested = true
		a.AdditionalInfoNote = c.Note
	}
	if c.From == StatusAdditionalInfoRequested {
		a.AdditionalInfoRequested = false
		a.AdditionalInfoNote = ""
		at := c.At
		a.AdditionalInfoProvidedAt = &at
	}
}

// MaskSensitive keeps the last four characters of an identity number.
func MaskSensitive(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	if len(s) <= 4 {
		m := strings.Repeat("*", len(s))
		return &m
	}
	m := strings.Repeat("*", len(s)-4) + s[len(s)-4:]
	return &m
}
