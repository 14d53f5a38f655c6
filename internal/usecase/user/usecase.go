package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UpdateInput struct {
	UserID   string
	Role     *string
	IsActive *bool
}

type Usecase struct {
	repos      uow.Repos
	uow        uow.UnitOfWork
	emitter    activity.Emitter
	bcryptCost int
}

func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, emitter activity.Emitter) *Usecase {
	return &Usecase{repos: repos, uow: tx, emitter: emitter, bcryptCost: bcrypt.DefaultCost}
}

func (u *Usecase) Me(ctx context.Context, p userDomain.Principal) (*userDomain.User, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	return u.repos.Users.GetByUserID(ctx, p.UserID)
}

func (u *Usecase) List(ctx context.Context, p userDomain.Principal, role string) ([]userDomain.User, error) {
	if err := p.Require(userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	f := userDomain.Filter{}
	if role != "" {
		r, err := userDomain.ParseRole(strings.ToUpper(role))
		if err != nil {
			return nil, errs.Invalid("role", "unknown role")
		}
		f.Role = r
	}
	return u.repos.Users.List(ctx, f)
}

// Update changes a user's role or active flag. Nobody changes their own role,
// and the last active super admin can be neither demoted nor deactivated.
func (u *Usecase) Update(ctx context.Context, p userDomain.Principal, in UpdateInput) (*userDomain.User, error) {
	if err := p.Require(userDomain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	var role userDomain.Role
	if in.Role != nil {
		r, err := userDomain.ParseRole(strings.ToUpper(*in.Role))
		if err != nil {
			return nil, errs.Invalid("role", "unknown role")
		}
		role = r
	}

	var out *userDomain.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		target, err := r.Users.GetByUserID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if role != "" && role != target.Role && target.UserID == p.UserID {
			return userDomain.ErrSelfRoleChange
		}

		wasAdmin := target.IsActive && target.Role == userDomain.RoleSuperAdmin
		if role != "" {
			target.Role = role
		}
		if in.IsActive != nil {
			target.IsActive = *in.IsActive
		}
		stillAdmin := target.IsActive && target.Role == userDomain.RoleSuperAdmin
		if wasAdmin && !stillAdmin {
			n, err := r.Users.CountActive(ctx, userDomain.RoleSuperAdmin)
			if err != nil {
				return err
			}
			if n <= 1 {
				return userDomain.ErrLastSuperAdmin
			}
		}
		if err := r.Users.Save(ctx, target); err != nil {
			return err
		}
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	notification.Recorded(ctx, u.emitter, p, activity.ActionUserUpdate, "user", out.UserID,
		fmt.Sprintf("role=%s active=%t", out.Role, out.IsActive))
	return out, nil
}

// Seed creates a super admin when none is active. It reports whether one
// was created.
func (u *Usecase) Seed(ctx context.Context, email, password string) (bool, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}
	n, err := u.repos.Users.CountActive(ctx, userDomain.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &userDomain.User{
		UserID:        id.NewID32(),
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     "Super",
		LastName:      "Admin",
		Role:          userDomain.RoleSuperAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := u.repos.Users.Create(ctx, admin); err != nil {
		if errors.Is(err, userDomain.ErrEmailTaken) {
			logrus.WithContext(ctx).WithField("email", email).Warn("seed admin email belongs to an existing user; not seeding")
			return false, nil
		}
		return false, err
	}
	logrus.WithContext(ctx).WithField("email", admin.Email).Info("seeded super admin")
	return true, nil
}
