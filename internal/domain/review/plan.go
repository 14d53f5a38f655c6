package review

import (
	"loanflow-backend/internal/domain/application"
	"loanflow-backend/internal/domain/user"
)

// Plan is what recording a review does to its application: the tier the
// review is filed under and the statuses the application passes through,
// in order. An empty Path leaves the status alone.
type Plan struct {
	Tier Tier
	Path []application.Status
}

// Final returns the status the application ends in.
func (p Plan) Final(current application.Status) application.Status {
	if len(p.Path) == 0 {
		return current
	}
	return p.Path[len(p.Path)-1]
}

// PlanFor decides the status path for a review cast by role on an application
// currently in status. Officers recommend: their review only moves a PENDING
// application into review, or asks for more information. Approvers decide,
// and only on applications under review. A super admin acts as the officer
// while the application is still PENDING and as the approver afterwards.
func PlanFor(role user.Role, current application.Status, d Decision) (Plan, error) {
	tier, err := TierFor(role, current)
	if err != nil {
		return Plan{}, err
	}
	switch current {
	case application.StatusPending, application.StatusUnderReview, application.StatusAdditionalInfoRequested:
	default:
		return Plan{}, ErrNotReviewable
	}

	if tier == TierOfficer {
		switch {
		case d == DecisionRequestInfo && current == application.StatusPending:
			return Plan{tier, []application.Status{application.StatusUnderReview, application.StatusAdditionalInfoRequested}}, nil
		case d == DecisionRequestInfo && current == application.StatusUnderReview:
			return Plan{tier, []application.Status{application.StatusAdditionalInfoRequested}}, nil
		case current == application.StatusPending:
			return Plan{tier, []application.Status{application.StatusUnderReview}}, nil
		}
		return Plan{Tier: tier}, nil
	}

	if current != application.StatusUnderReview {
		return Plan{}, ErrNotReviewable
	}
	return Plan{tier, []application.Status{StatusFor(d)}}, nil
}

// TierFor is the tier a review by role is filed under while the application
// is in current.
func TierFor(role user.Role, current application.Status) (Tier, error) {
	switch role {
	case user.RoleLoanOfficer:
		return TierOfficer, nil
	case user.RoleApprover:
		return TierApprover, nil
	case user.RoleSuperAdmin:
		if current == application.StatusPending {
			return TierOfficer, nil
		}
		return TierApprover, nil
	}
	return "", user.ErrInsufficientRole
}

// StatusFor maps a decision onto the application status it argues for.
func StatusFor(d Decision) application.Status {
	switch d {
	case DecisionApproved:
		return application.StatusApproved
	case DecisionRejected:
		return application.StatusRejected
	}
	return application.StatusAdditionalInfoRequested
}

// DecisionFor maps a status set by a direct transition onto the review
// decision it amounts to. Statuses that decide nothing report false.
func DecisionFor(s application.Status) (Decision, bool) {
	switch s {
	case application.StatusApproved:
		return DecisionApproved, true
	case application.StatusRejected:
		return DecisionRejected, true
	case application.StatusAdditionalInfoRequested:
		return DecisionRequestInfo, true
	}
	return "", false
}
