package uow

import (
	"context"

	"loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/domain/application"
	"loanflow-backend/internal/domain/document"
	"loanflow-backend/internal/domain/interestrate"
	"loanflow-backend/internal/domain/loan"
	"loanflow-backend/internal/domain/review"
	"loanflow-backend/internal/domain/user"
)

// Repos are bound to the transaction they were handed out for.
type Repos struct {
	Users         user.Repository
	Applications  application.Repository
	Documents     document.Repository
	Reviews       review.Repository
	Loans         loan.Repository
	InterestRates interestrate.Repository
	Activity      activity.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.Application) error) error
}
