package application

import "loanflow-backend/internal/domain/user"

// approverQueue is what an approver works on.
var approverQueue = []Status{StatusUnderReview, StatusAdditionalInfoRequested}

// Scope narrows a listing to what a principal may see. Zero-valued fields
// do not filter.
type Scope struct {
	ApplicantID       string
	AssignedOfficerID string
	Statuses          []Status
	// None matches nothing; set for principals without any visibility.
	None bool
}

// ScopeFor returns the standing visibility rule for p.
func ScopeFor(p user.Principal) Scope {
	switch p.Role {
	case user.RoleSuperAdmin:
		return Scope{}
	case user.RoleApprover:
		return Scope{Statuses: approverQueue}
	case user.RoleLoanOfficer:
		return Scope{AssignedOfficerID: p.UserID}
	case user.RoleApplicant:
		return Scope{ApplicantID: p.UserID}
	}
	return Scope{None: true}
}

// Matches applies the scope to a single record.
func (s Scope) Matches(a *Application) bool {
	if s.None {
		return false
	}
	if s.ApplicantID != "" && a.ApplicantID != s.ApplicantID {
		return false
	}
	if s.AssignedOfficerID != "" && !a.AssignedTo(s.AssignedOfficerID) {
		return false
	}
	if len(s.Statuses) > 0 {
		for _, st := range s.Statuses {
			if a.Status == st {
				return true
			}
		}
		return false
	}
	return true
}

// CanView reports whether p may read a.
func CanView(p user.Principal, a *Application) bool { return ScopeFor(p).Matches(a) }

// SeesSensitive reports whether p may read unmasked BVN/NIN values.
func SeesSensitive(p user.Principal, a *Application) bool {
	return p.Role == user.RoleSuperAdmin || (p.Role == user.RoleApplicant && a.OwnedBy(p.UserID))
}

// CanAct reports whether p may act on a at all; the capability table still
// decides which edges. Approvers and super admins act on any application so
// that decisions and disbursement reach records outside their listing.
func CanAct(p user.Principal, a *Application) bool {
	switch p.Role {
	case user.RoleSuperAdmin, user.RoleApprover:
		return true
	case user.RoleLoanOfficer:
		return a.AssignedTo(p.UserID)
	case user.RoleApplicant:
		return a.OwnedBy(p.UserID)
	}
	return false
}
