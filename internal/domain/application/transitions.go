package application

import (
	"fmt"

	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/domain/user"
)

type Edge struct {
	From Status
	To   Status
}

// edges is the capability table: every legal edge and the roles that may
// take it. DISBURSED -> CLOSED has no roles because only the repayment path
// closes an application.
var edges = map[Edge][]user.Role{
	{StatusPending, StatusUnderReview}:                 {user.RoleLoanOfficer, user.RoleSuperAdmin},
	{StatusUnderReview, StatusAdditionalInfoRequested}: {user.RoleLoanOfficer, user.RoleApprover, user.RoleSuperAdmin},
	{StatusAdditionalInfoRequested, StatusUnderReview}: {user.RoleApplicant, user.RoleLoanOfficer, user.RoleSuperAdmin},
	{StatusUnderReview, StatusApproved}:                {user.RoleApprover, user.RoleSuperAdmin},
	{StatusUnderReview, StatusRejected}:                {user.RoleApprover, user.RoleSuperAdmin},
	{StatusApproved, StatusDisbursed}:                  {user.RoleApprover, user.RoleSuperAdmin},
	{StatusDisbursed, StatusClosed}:                    nil,
}

// IsEdge reports whether from -> to is a legal transition.
func IsEdge(from, to Status) bool {
	_, ok := edges[Edge{From: from, To: to}]
	return ok
}

// Edges lists every legal transition.
func Edges() []Edge {
	out := make([]Edge, 0, len(edges))
	for e := range edges {
		out = append(out, e)
	}
	return out
}

// CheckEdge fails with ErrInvalidTransition when from -> to is not legal.
func CheckEdge(from, to Status) error {
	if !IsEdge(from, to) {
		return errs.New(errs.ErrInvalidTransition, fmt.Sprintf("application cannot move from %s to %s", from, to))
	}
	return nil
}

// Authorize checks the edge first and then the role's capability for it.
func Authorize(role user.Role, from, to Status) error {
	if err := CheckEdge(from, to); err != nil {
		return err
	}
	for _, r := range edges[Edge{From: from, To: to}] {
		if r == role {
			return nil
		}
	}
	return errs.New(errs.ErrForbidden, fmt.Sprintf("role %s may not move application from %s to %s", role, from, to))
}
