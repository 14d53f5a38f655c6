package notification

import (
	"context"

	"loanflow-backend/internal/domain/activity"
	userDomain "loanflow-backend/internal/domain/user"
)

const defaultLimit = 50

type Usecase struct{ repo activity.Repository }

func NewUsecase(r activity.Repository) *Usecase { return &Usecase{repo: r} }

// List returns the caller's own notifications, newest first.
func (u *Usecase) List(ctx context.Context, p userDomain.Principal, limit int) ([]activity.Notification, error) {
	if err := p.Require(userDomain.Roles...); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return u.repo.ListNotifications(ctx, p.UserID, limit)
}
