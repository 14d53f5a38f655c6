package interestrate

import (
	"context"
	"fmt"

	"loanflow-backend/internal/domain/activity"
	rateDomain "loanflow-backend/internal/domain/interestrate"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"

	"github.com/shopspring/decimal"
)

type CreateInput struct {
	Months int
	Rate   decimal.Decimal
}

type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	emitter activity.Emitter
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, emitter activity.Emitter) *Usecase {
	return &Usecase{repos: repos, uow: tx, emitter: emitter}
}

// Create makes rate the active one for its duration. The previously active
// row is deactivated in the same transaction and kept as history.
func (u *Usecase) Create(ctx context.Context, p userDomain.Principal, in CreateInput) (*rateDomain.InterestRate, error) {
	if err := p.Require(userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if err := rateDomain.Validate(in.Months, in.Rate); err != nil {
		return nil, err
	}
	r := &rateDomain.InterestRate{
		RateID:   id.NewID32(),
		Months:   in.Months,
		Rate:     in.Rate,
		IsActive: true,
		AdminID:  p.UserID,
	}
	err := u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		if _, err := tx.InterestRates.DeactivateActive(ctx, in.Months); err != nil {
			return err
		}
		return tx.InterestRates.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	notification.Recorded(ctx, u.emitter, p, activity.ActionRateCreate, "interest_rate", r.RateID, fmt.Sprintf("%s%% for %d months", r.Rate, r.Months))
	return r, nil
}

// List is open to staff. activeOnly hides history rows.
func (u *Usecase) List(ctx context.Context, p userDomain.Principal, activeOnly bool) ([]rateDomain.InterestRate, error) {
	if err := p.Require(userDomain.RoleSuperAdmin, userDomain.RoleApprover, userDomain.RoleLoanOfficer); err != nil {
		return nil, err
	}
	return u.repos.InterestRates.List(ctx, activeOnly)
}

func (u *Usecase) Delete(ctx context.Context, p userDomain.Principal, rateID string) error {
	if err := p.Require(userDomain.RoleSuperAdmin); err != nil {
		return err
	}
	if err := u.repos.InterestRates.SoftDelete(ctx, rateID); err != nil {
		return err
	}
	notification.Recorded(ctx, u.emitter, p, activity.ActionRateDelete, "interest_rate", rateID, "")
	return nil
}
