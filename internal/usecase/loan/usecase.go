package loan

import (
	"context"
	"errors"
	"time"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	"loanflow-backend/internal/domain/errs"
	loanDomain "loanflow-backend/internal/domain/loan"
	reviewDomain "loanflow-backend/internal/domain/review"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/infrastructure/metrics"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	emitter activity.Emitter
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewUsecase: repos serve reads, tx serves disbursement and repayments.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, emitter activity.Emitter, m *metrics.Metrics) *Usecase {
	return &Usecase{repos: repos, uow: tx, emitter: emitter, metrics: m, now: time.Now}
}

// Disburse releases funds for an approved application: the loan is created
// and the application moves to DISBURSED in one transaction.
func (u *Usecase) Disburse(ctx context.Context, p userDomain.Principal, in DisburseInput) (*LoanDTO, error) {
	if err := p.Require(userDomain.RoleApprover, userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, errs.Invalid("disbursement_amount", "must be greater than 0")
	}

	var (
		l      *loanDomain.Loan
		app    *appDomain.Application
		change appDomain.Change
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appDomain.Application) error {
		if !appDomain.CanAct(p, a) {
			return appDomain.ErrNotVisible
		}
		if in.Expected != nil && a.Status != *in.Expected {
			return appDomain.ErrConcurrentModification
		}
		if err := appDomain.Authorize(p.Role, a.Status, appDomain.StatusDisbursed); err != nil {
			return err
		}
		reviews, err := r.Reviews.ListByApplicationID(ctx, a.ApplicationID)
		if err != nil {
			return err
		}
		if !reviewDomain.Summarize(reviews, a.Status).EligibleForDisbursement {
			return loanDomain.ErrNotEligible
		}
		switch _, err := r.Loans.GetByApplicationID(ctx, a.ApplicationID); {
		case err == nil:
			return loanDomain.ErrAlreadyDisbursed
		case !errors.Is(err, loanDomain.ErrNotFound):
			return err
		}

		amount := a.Amount
		if in.Amount != nil {
			if in.Amount.GreaterThan(a.Amount) {
				return errs.Invalid("disbursement_amount", "must not exceed the approved amount")
			}
			amount = *in.Amount
		}

		at := u.now().UTC()
		l, err = loanDomain.New(loanDomain.Disbursement{
			LoanID:         id.NewID32(),
			ApplicationID:  a.ApplicationID,
			ApplicantID:    a.ApplicantID,
			ApprovedAmount: a.Amount,
			Amount:         amount,
			RatePercent:    a.InterestRate,
			Months:         a.Duration,
			By:             p.UserID,
			At:             at,
		})
		if err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		change = appDomain.Change{From: a.Status, To: appDomain.StatusDisbursed, At: at}
		if err := r.Applications.UpdateStatus(ctx, a.ApplicationID, change); err != nil {
			return err
		}
		a.Apply(change)
		app = a
		return nil
	})
	if err != nil {
		u.metrics.TransitionRejected(errs.KindOf(err))
		return nil, err
	}

	u.metrics.Transition(string(change.From), string(change.To))
	notification.Transitioned(ctx, u.emitter, p, app, change)
	notification.Recorded(ctx, u.emitter, p, activity.ActionDisburse, "loan", l.LoanID, l.DisbursementAmount.StringFixed(2))
	dto := toDTO(l)
	return &dto, nil
}

// RecordRepayment is the trusted payment-recording path. It is never reached
// with a user principal. The loan write is conditional on the version read,
// and the repayment that pays the loan off also closes its application.
func (u *Usecase) RecordRepayment(ctx context.Context, in RepaymentInput) (*RepaymentResult, error) {
	var (
		res    *RepaymentResult
		app    *appDomain.Application
		change appDomain.Change
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, in.LoanID)
		if err != nil {
			return err
		}
		expected := l.Version
		at := u.now().UTC()
		closed, err := l.Repay(in.Amount, at)
		if err != nil {
			return err
		}
		if err := r.Loans.Update(ctx, l, expected); err != nil {
			return err
		}
		rp := loanDomain.Repayment{
			RepaymentID: id.NewID32(),
			LoanID:      l.LoanID,
			Amount:      in.Amount,
			Reference:   in.Reference,
			RecordedAt:  at,
		}
		if err := r.Loans.CreateRepayment(ctx, &rp); err != nil {
			return err
		}

		if closed {
			a, err := r.Applications.GetByApplicationIDForUpdate(ctx, l.ApplicationID)
			if err != nil {
				return err
			}
			if err := appDomain.CheckEdge(a.Status, appDomain.StatusClosed); err != nil {
				return err
			}
			change = appDomain.Change{From: a.Status, To: appDomain.StatusClosed, At: at}
			if err := r.Applications.UpdateStatus(ctx, a.ApplicationID, change); err != nil {
				return err
			}
			a.Apply(change)
			app = a
		}
		res = &RepaymentResult{Loan: toDTO(l), Repayment: rp, Closed: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.Repayment(res.Closed)
	notification.Recorded(ctx, u.emitter, notification.System, activity.ActionRepayment, "loan", res.Loan.LoanID, in.Amount.StringFixed(2))
	if res.Closed {
		u.metrics.Transition(string(change.From), string(change.To))
		notification.Transitioned(ctx, u.emitter, notification.System, app, change)
	}
	return res, nil
}

func (u *Usecase) List(ctx context.Context, p userDomain.Principal, in ListInput) (*ListResult, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	f := loanDomain.ListFilter{Page: in.Page, Limit: in.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	switch p.Role {
	case userDomain.RoleApplicant:
		f.ApplicantID = p.UserID
	case userDomain.RoleLoanOfficer:
		f.AssignedOfficerID = p.UserID
	}

	items, total, err := u.repos.Loans.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &ListResult{
		Loans: make([]LoanDTO, 0, len(items)),
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		},
	}
	for i := range items {
		out.Loans = append(out.Loans, toDTO(&items[i]))
	}
	return out, nil
}

// Get returns a loan with its repayments. Applicants see their own loans and
// officers the loans of applications assigned to them.
func (u *Usecase) Get(ctx context.Context, p userDomain.Principal, loanID string) (*DetailDTO, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	l, err := u.repos.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case userDomain.RoleApplicant:
		if l.ApplicantID != p.UserID {
			return nil, loanDomain.ErrNotVisible
		}
	case userDomain.RoleLoanOfficer:
		a, err := u.repos.Applications.GetByApplicationID(ctx, l.ApplicationID)
		if err != nil {
			return nil, err
		}
		if !a.AssignedTo(p.UserID) {
			return nil, loanDomain.ErrNotVisible
		}
	}

	rps, err := u.repos.Loans.ListRepayments(ctx, l.LoanID)
	if err != nil {
		return nil, err
	}
	return &DetailDTO{LoanDTO: toDTO(l), Repayments: rps}, nil
}
