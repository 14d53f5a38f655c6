package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/domain/errs"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/usecase/notification"
	"loanflow-backend/pkg/id"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// TokenIssuer turns a principal into a signed access token.
type TokenIssuer interface {
	Issue(p userDomain.Principal) (token string, expiresAt time.Time, err error)
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *userDomain.User `json:"user"`
}

type Usecase struct {
	users      userDomain.Repository
	issuer     TokenIssuer
	emitter    activity.Emitter
	bcryptCost int
}

func NewUsecase(users userDomain.Repository, issuer TokenIssuer, emitter activity.Emitter) *Usecase {
	return &Usecase{users: users, issuer: issuer, emitter: emitter, bcryptCost: bcrypt.DefaultCost}
}

// Register creates an APPLICANT account. Staff accounts are promoted by a
// super admin afterwards.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*userDomain.User, error) {
	v := &errs.ValidationError{}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		v.Add("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		v.Add("password", "must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		v.Add("first_name", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		v.Add("last_name", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return nil, err
	}
	usr := &userDomain.User{
		UserID:       id.NewID32(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         userDomain.RoleApplicant,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, err
	}
	notification.Recorded(ctx, u.emitter, usr.Principal(), activity.ActionUserRegister, "user", usr.UserID, "registered "+usr.FullName())
	return usr, nil
}

// Login checks the password and issues a token. Unknown email and wrong
// password give the same error.
func (u *Usecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	usr, err := u.users.GetByEmail(ctx, email)
	if errors.Is(err, userDomain.ErrNotFound) {
		return nil, userDomain.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, userDomain.ErrBadCredentials
	}
	if !usr.IsActive {
		return nil, userDomain.ErrInactive
	}
	tok, exp, err := u.issuer.Issue(usr.Principal())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, ExpiresAt: exp, User: usr}, nil
}
