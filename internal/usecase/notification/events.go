package notification

import (
	"context"
	"fmt"
	"strings"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	userDomain "loanflow-backend/internal/domain/user"
)

// System is the actor recorded for changes made by trusted internal paths.
var System = userDomain.Principal{UserID: "system", Role: ""}

var statusMessages = map[appDomain.Status]string{
	appDomain.StatusUnderReview:             "Your loan application is now under review.",
	appDomain.StatusAdditionalInfoRequested: "Additional information is required for your loan application.",
	appDomain.StatusApproved:                "Your loan application has been approved.",
	appDomain.StatusRejected:                "Your loan application was not approved.",
	appDomain.StatusDisbursed:               "Your loan has been disbursed.",
	appDomain.StatusClosed:                  "Your loan is fully repaid and the application is closed.",
}

// Transitioned records one committed status change and tells the applicant.
func Transitioned(ctx context.Context, e activity.Emitter, actor userDomain.Principal, a *appDomain.Application, c appDomain.Change) {
	e.Audit(ctx, activity.AuditLog{
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		Action:     activity.ActionTransition,
		Entity:     "application",
		EntityID:   a.ApplicationID,
		FromStatus: string(c.From),
		ToStatus:   string(c.To),
		Detail:     c.Note,
	})
	msg, ok := statusMessages[c.To]
	if !ok {
		return
	}
	if c.To == appDomain.StatusAdditionalInfoRequested && strings.TrimSpace(c.Note) != "" {
		msg += " " + c.Note
	}
	appID := a.ApplicationID
	e.Notify(ctx, activity.Notification{
		UserID:        a.ApplicantID,
		ApplicationID: &appID,
		Title:         fmt.Sprintf("Application %s", strings.ReplaceAll(strings.ToLower(string(c.To)), "_", " ")),
		Message:       msg,
	})
}

// Submitted records a new application and tells the applicant and, when
// one was assigned, the loan officer.
func Submitted(ctx context.Context, e activity.Emitter, actor userDomain.Principal, a *appDomain.Application) {
	appID := a.ApplicationID
	e.Audit(ctx, activity.AuditLog{
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		Action:    activity.ActionSubmit,
		Entity:    "application",
		EntityID:  appID,
		ToStatus:  string(a.Status),
	})
	e.Notify(ctx, activity.Notification{
		UserID:        a.ApplicantID,
		ApplicationID: &appID,
		Title:         "Application received",
		Message:       "Your loan application was submitted and is pending review.",
	})
	if a.AssignedOfficerID != nil {
		e.Notify(ctx, activity.Notification{
			UserID:        *a.AssignedOfficerID,
			ApplicationID: &appID,
			Title:         "New application assigned",
			Message:       fmt.Sprintf("Application from %s %s is assigned to you.", a.FirstName, a.LastName),
		})
	}
}

// Recorded writes a plain audit entry.
func Recorded(ctx context.Context, e activity.Emitter, actor userDomain.Principal, action, entity, entityID, detail string) {
	e.Audit(ctx, activity.AuditLog{
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detail,
	})
}
