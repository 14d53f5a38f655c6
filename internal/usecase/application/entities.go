package application

import (
	"time"

	appDomain "loanflow-backend/internal/domain/application"
	docDomain "loanflow-backend/internal/domain/document"
	loanDomain "loanflow-backend/internal/domain/loan"
	reviewDomain "loanflow-backend/internal/domain/review"
	userDomain "loanflow-backend/internal/domain/user"

	"github.com/shopspring/decimal"
)

type DocumentUpload struct {
	Type     docDomain.Type
	FileName string
	Content  []byte
}

type SubmitInput struct {
	Amount           decimal.Decimal
	Duration         int
	MonthlyIncome    decimal.Decimal
	EmploymentStatus string
	Purpose          string
	FirstName        string
	LastName         string
	Phone            string
	Address          string
	AccountNumber    string
	BankName         string
	BVN              *string
	NIN              *string
	Documents        []DocumentUpload
}

type SubmitResult struct {
	ApplicationID     string `json:"applicationId"`
	DocumentsUploaded int    `json:"documentsUploaded"`
}

type ListInput struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ListResult struct {
	Applications []ApplicationDTO `json:"applications"`
	Pagination   Pagination       `json:"pagination"`
}

type TransitionInput struct {
	ApplicationID string
	To            appDomain.Status
	// Expected, when set, must match the stored status or the call fails
	// with a concurrent-modification error.
	Expected *appDomain.Status
	Note     string
}

type ApplicationDTO struct {
	ApplicationID            string           `json:"application_id"`
	ApplicantID              string           `json:"applicant_id"`
	AssignedOfficerID        *string          `json:"assigned_officer_id"`
	Amount                   decimal.Decimal  `json:"amount"`
	Duration                 int              `json:"duration"`
	InterestRate             decimal.Decimal  `json:"interest_rate"`
	MonthlyIncome            decimal.Decimal  `json:"monthly_income"`
	EmploymentStatus         string           `json:"employment_status"`
	Purpose                  string           `json:"purpose,omitempty"`
	FirstName                string           `json:"first_name"`
	LastName                 string           `json:"last_name"`
	Phone                    string           `json:"phone"`
	Address                  string           `json:"address,omitempty"`
	AccountNumber            string           `json:"account_number"`
	BankName                 string           `json:"bank_name"`
	BVN                      *string          `json:"bvn,omitempty"`
	NIN                      *string          `json:"nin,omitempty"`
	Status                   appDomain.Status `json:"status"`
	AdditionalInfoRequested  bool             `json:"additional_info_requested"`
	AdditionalInfoNote       string           `json:"additional_info_note,omitempty"`
	AdditionalInfoProvidedAt *time.Time       `json:"additional_info_provided_at,omitempty"`
	Version                  uint64           `json:"version"`
	SubmittedAt              time.Time        `json:"submitted_at"`
	StatusUpdatedAt          time.Time        `json:"status_updated_at"`
}

type ApplicantDTO struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type DetailDTO struct {
	ApplicationDTO
	Applicant *ApplicantDTO         `json:"applicant,omitempty"`
	Documents []docDomain.Document  `json:"documents"`
	Reviews   []reviewDomain.Review `json:"reviews"`
	Loan      *loanDomain.Loan      `json:"loan,omitempty"`
	Summary   reviewDomain.Summary  `json:"review_summary"`
}

func toDTO(a *appDomain.Application, seesSensitive bool) ApplicationDTO {
	dto := ApplicationDTO{
		ApplicationID:            a.ApplicationID,
		ApplicantID:              a.ApplicantID,
		AssignedOfficerID:        a.AssignedOfficerID,
		Amount:                   a.Amount,
		Duration:                 a.Duration,
		InterestRate:             a.InterestRate,
		MonthlyIncome:            a.MonthlyIncome,
		EmploymentStatus:         a.EmploymentStatus,
		Purpose:                  a.Purpose,
		FirstName:                a.FirstName,
		LastName:                 a.LastName,
		Phone:                    a.Phone,
		Address:                  a.Address,
		AccountNumber:            a.AccountNumber,
		BankName:                 a.BankName,
		BVN:                      a.BVN,
		NIN:                      a.NIN,
		Status:                   a.Status,
		AdditionalInfoRequested:  a.AdditionalInfoRequested,
		AdditionalInfoNote:       a.AdditionalInfoNote,
		AdditionalInfoProvidedAt: a.AdditionalInfoProvidedAt,
		Version:                  a.Version,
		SubmittedAt:              a.SubmittedAt,
		StatusUpdatedAt:          a.StatusUpdatedAt,
	}
	if !seesSensitive {
		dto.BVN = appDomain.MaskSensitive(a.BVN)
		dto.NIN = appDomain.MaskSensitive(a.NIN)
	}
	return dto
}

func toApplicantDTO(u *userDomain.User) *ApplicantDTO {
	return &ApplicantDTO{UserID: u.UserID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}
