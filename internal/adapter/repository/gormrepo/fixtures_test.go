package gormrepo

import (
	"context"
	"testing"
	"time"

	appDomain "loanflow-backend/internal/domain/application"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/pkg/id"

	"github.com/shopspring/decimal"
)

func makeUser(role userDomain.Role) *userDomain.User {
	uid := id.NewID32()
	return &userDomain.User{
		UserID:       uid,
		Email:        uid + "@example.com",
		PasswordHash: "x",
		FirstName:    "Ada",
		LastName:     "Obi",
		Role:         role,
		IsActive:     true,
	}
}

func makeApplication(applicantID string, officerID *string, status appDomain.Status, submitted time.Time) *appDomain.Application {
	return &appDomain.Application{
		ApplicationID:     id.NewID32(),
		ApplicantID:       applicantID,
		AssignedOfficerID: officerID,
		Amount:            decimal.NewFromInt(100000),
		Duration:          12,
		InterestRate:      decimal.NewFromInt(27),
		MonthlyIncome:     decimal.NewFromInt(50000),
		EmploymentStatus:  "EMPLOYED",
		FirstName:         "Ada",
		LastName:          "Obi",
		Phone:             "08030000000",
		AccountNumber:     "0123456789",
		BankName:          "First Bank",
		Status:            status,
		Version:           1,
		SubmittedAt:       submitted.UTC(),
		StatusUpdatedAt:   submitted.UTC(),
	}
}

func mustCreateApp(t *testing.T, r *ApplicationRepository, a *appDomain.Application) {
	t.Helper()
	if err := r.Create(context.Background(), a); err != nil {
		t.Fatalf("create application: %v", err)
	}
}
