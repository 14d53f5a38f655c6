package review

import (
	"context"
	"strings"
	"time"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	"loanflow-backend/internal/domain/errs"
	reviewDomain "loanflow-backend/internal/domain/review"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/infrastructure/metrics"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"
)

type Usecase struct {
	uow     uow.UnitOfWork
	emitter activity.Emitter
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, emitter activity.Emitter, m *metrics.Metrics) *Usecase {
	return &Usecase{uow: tx, emitter: emitter, metrics: m, now: time.Now}
}

// Record appends a review and applies the status path it implies in the same
// transaction. Every step of the path passes the capability table.
func (u *Usecase) Record(ctx context.Context, p userDomain.Principal, in RecordInput) (*RecordResult, error) {
	if err := p.Require(userDomain.RoleLoanOfficer, userDomain.RoleApprover, userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	d, err := reviewDomain.ParseDecision(in.Status)
	if err != nil {
		return nil, errs.Invalid("status", "must be one of APPROVED, REJECTED, REQUEST_INFO")
	}

	var (
		res     *RecordResult
		app     *appDomain.Application
		changes []appDomain.Change
	)
	err = u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appDomain.Application) error {
		if !appDomain.CanAct(p, a) {
			return appDomain.ErrNotVisible
		}
		plan, err := reviewDomain.PlanFor(p.Role, a.Status, d)
		if err != nil {
			return err
		}

		at := u.now().UTC()
		note := strings.TrimSpace(in.Comments)
		for _, to := range plan.Path {
			if err := appDomain.Authorize(p.Role, a.Status, to); err != nil {
				return err
			}
			c := appDomain.Change{From: a.Status, To: to, At: at}
			if to == appDomain.StatusAdditionalInfoRequested {
				c.Note = note
			}
			if err := r.Applications.UpdateStatus(ctx, a.ApplicationID, c); err != nil {
				return err
			}
			a.Apply(c)
			changes = append(changes, c)
		}

		rv := reviewDomain.Review{
			ReviewID:       id.NewID32(),
			ApplicationID:  a.ApplicationID,
			ReviewerID:     p.UserID,
			ReviewerRole:   p.Role,
			Tier:           plan.Tier,
			Status:         d,
			Comments:       note,
			Recommendation: strings.TrimSpace(in.Recommendation),
			ReviewedAt:     at,
		}
		if err := r.Reviews.Create(ctx, &rv); err != nil {
			return err
		}
		app = a
		res = &RecordResult{Review: rv, ApplicationStatus: a.Status, Version: a.Version}
		return nil
	})
	if err != nil {
		u.metrics.TransitionRejected(errs.KindOf(err))
		return nil, err
	}

	u.metrics.Review(string(res.Review.Tier), string(d))
	notification.Recorded(ctx, u.emitter, p, activity.ActionReview, "application", app.ApplicationID,
		string(res.Review.Tier)+" "+string(d))
	for _, c := range changes {
		u.metrics.Transition(string(c.From), string(c.To))
		notification.Transitioned(ctx, u.emitter, p, app, c)
	}
	if res.Review.Tier == reviewDomain.TierOfficer && d == reviewDomain.DecisionApproved {
		u.acknowledge(ctx, app)
	}
	return res, nil
}

// acknowledge tells the assigned officer their approve recommendation is on
// file. It does not move the application; an approver decides.
func (u *Usecase) acknowledge(ctx context.Context, a *appDomain.Application) {
	if a.AssignedOfficerID == nil {
		return
	}
	appID := a.ApplicationID
	u.emitter.Notify(ctx, activity.Notification{
		UserID:        *a.AssignedOfficerID,
		ApplicationID: &appID,
		Title:         "Recommendation recorded",
		Message:       "Your approval recommendation was recorded and awaits an approver's decision.",
	})
}
