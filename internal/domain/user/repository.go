package user

import "context"

type Filter struct {
	Role       Role
	ActiveOnly bool
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f Filter) ([]User, error)
	// CountActive counts active users holding role.
	CountActive(ctx context.Context, role Role) (int64, error)
}
