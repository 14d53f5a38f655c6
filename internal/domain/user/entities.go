package user

import (
	"time"

	"loanflow-backend/internal/domain/errs"

	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleLoanOfficer Role = "LOAN_OFFICER"
	RoleApprover    Role = "APPROVER"
	RoleApplicant   Role = "APPLICANT"
)

var Roles = []Role{RoleSuperAdmin, RoleLoanOfficer, RoleApprover, RoleApplicant}

var (
	ErrNotFound         = errs.New(errs.ErrNotFound, "user not found")
	ErrEmailTaken       = errs.New(errs.ErrConflict, "email already registered")
	ErrInvalidRole      = errs.New(errs.ErrValidation, "unknown role")
	ErrLastSuperAdmin   = errs.New(errs.ErrConflict, "cannot remove the last active super admin")
	ErrSelfRoleChange   = errs.New(errs.ErrForbidden, "users cannot change their own role")
	ErrInactive         = errs.New(errs.ErrForbidden, "user is deactivated")
	ErrBadCredentials   = errs.New(errs.ErrUnauthorized, "invalid email or password")
	ErrMissingPrincipal = errs.New(errs.ErrUnauthorized, "authentication required")
	ErrInsufficientRole = errs.New(errs.ErrForbidden, "insufficient permissions")
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleLoanOfficer, RoleApprover, RoleApplicant:
		return true
	}
	return false
}

// Staff reports whether the role belongs to the lender side.
func (r Role) Staff() bool { return r.Valid() && r != RoleApplicant }

// Principal is the authenticated caller of an operation. It is passed
// explicitly into every usecase call.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) Is(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Require returns ErrMissingPrincipal for an empty principal and
// ErrInsufficientRole when the role is not one of roles.
func (p Principal) Require(roles ...Role) error {
	if p.UserID == "" || !p.Role.Valid() {
		return ErrMissingPrincipal
	}
	if len(roles) > 0 && !p.Is(roles...) {
		return ErrInsufficientRole
	}
	return nil
}

// Table: users
type User struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID        string         `gorm:"column:user_id;type:char(32);not null;uniqueIndex" json:"user_id"`
	Email         string         `gorm:"column:email;size:191;not null;uniqueIndex" json:"email"`
	PasswordHash  string         `gorm:"column:password_hash;size:100;not null" json:"-"`
	FirstName     string         `gorm:"column:first_name;size:100" json:"first_name"`
	LastName      string         `gorm:"column:last_name;size:100" json:"last_name"`
	Phone         string         `gorm:"column:phone;size:32" json:"phone,omitempty"`
	Role          Role           `gorm:"column:role;size:20;not null;index" json:"role"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	EmailVerified bool           `gorm:"column:email_verified;not null;default:false" json:"email_verified"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) Principal() Principal { return Principal{UserID: u.UserID, Role: u.Role} }

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
