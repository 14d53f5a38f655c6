package user

import (
	"context"
	"errors"
	"testing"

	"loanflow-backend/internal/adapter/repository/gormrepo"
	"loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/domain/errs"
	"loanflow-backend/internal/domain/uow"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/testutil/dbtest"
	"loanflow-backend/pkg/id"

	"golang.org/x/crypto/bcrypt"
)

func newUsecase(t *testing.T) (*Usecase, uow.Repos) {
	t.Helper()
	db := dbtest.Open(t)
	repos := gormrepo.Repos(db)
	uc := NewUsecase(repos, gormrepo.NewGormUoW(db), activity.Nop{})
	uc.bcryptCost = bcrypt.MinCost
	return uc, repos
}

func addUser(t *testing.T, repos uow.Repos, role userDomain.Role) *userDomain.User {
	t.Helper()
	uid := id.NewID32()
	u := &userDomain.User{UserID: uid, Email: uid + "@example.com", PasswordHash: "x", Role: role, IsActive: true}
	if err := repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func ptr[T any](v T) *T { return &v }

func TestUpdateLastSuperAdmin(t *testing.T) {
	uc, repos := newUsecase(t)
	ctx := context.Background()
	first := addUser(t, repos, userDomain.RoleSuperAdmin)

	if _, err := uc.Update(ctx, first.Principal(), UpdateInput{UserID: first.UserID, IsActive: ptr(false)}); !errors.Is(err, userDomain.ErrLastSuperAdmin) {
		t.Fatalf("deactivating the last admin: want ErrLastSuperAdmin, got %v", err)
	}

	second := addUser(t, repos, userDomain.RoleSuperAdmin)
	if _, err := uc.Update(ctx, second.Principal(), UpdateInput{UserID: first.UserID, IsActive: ptr(false)}); err != nil {
		t.Fatalf("deactivating a non-last admin: %v", err)
	}
	if _, err := uc.Update(ctx, second.Principal(), UpdateInput{UserID: second.UserID, IsActive: ptr(false)}); !errors.Is(err, userDomain.ErrLastSuperAdmin) {
		t.Fatalf("second admin is now the last one: want ErrLastSuperAdmin, got %v", err)
	}

	got, _ := repos.Users.GetByUserID(ctx, first.UserID)
	if got.IsActive {
		t.Fatalf("first admin should be inactive")
	}
}

func TestUpdate(t *testing.T) {
	cases := []struct {
		name string
		in   func(admin, officer *userDomain.User) (userDomain.Principal, UpdateInput)
		want error
	}{
		{"promote officer", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return a.Principal(), UpdateInput{UserID: o.UserID, Role: ptr("approver")}
		}, nil},
		{"deactivate officer", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return a.Principal(), UpdateInput{UserID: o.UserID, IsActive: ptr(false)}
		}, nil},
		{"own role", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return a.Principal(), UpdateInput{UserID: a.UserID, Role: ptr("LOAN_OFFICER")}
		}, errs.ErrForbidden},
		{"unknown role", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return a.Principal(), UpdateInput{UserID: o.UserID, Role: ptr("KING")}
		}, errs.ErrValidation},
		{"not an admin", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return o.Principal(), UpdateInput{UserID: a.UserID, IsActive: ptr(false)}
		}, errs.ErrForbidden},
		{"missing user", func(a, o *userDomain.User) (userDomain.Principal, UpdateInput) {
			return a.Principal(), UpdateInput{UserID: id.NewID32(), IsActive: ptr(false)}
		}, errs.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, repos := newUsecase(t)
			admin := addUser(t, repos, userDomain.RoleSuperAdmin)
			officer := addUser(t, repos, userDomain.RoleLoanOfficer)
			p, in := tc.in(admin, officer)
			_, err := uc.Update(context.Background(), p, in)
			if tc.want == nil && err != nil {
				t.Fatalf("Update: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestListAndMe(t *testing.T) {
	uc, repos := newUsecase(t)
	ctx := context.Background()
	admin := addUser(t, repos, userDomain.RoleSuperAdmin)
	addUser(t, repos, userDomain.RoleLoanOfficer)
	addUser(t, repos, userDomain.RoleLoanOfficer)

	officers, err := uc.List(ctx, admin.Principal(), "loan_officer")
	if err != nil || len(officers) != 2 {
		t.Fatalf("officers=%d err=%v", len(officers), err)
	}
	all, _ := uc.List(ctx, admin.Principal(), "")
	if len(all) != 3 {
		t.Fatalf("all=%d want 3", len(all))
	}
	if _, err := uc.List(ctx, officers[0].Principal(), ""); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("officer list: want forbidden, got %v", err)
	}
	me, err := uc.Me(ctx, officers[0].Principal())
	if err != nil || me.UserID != officers[0].UserID {
		t.Fatalf("Me=%v err=%v", me, err)
	}
}

func TestSeed(t *testing.T) {
	uc, repos := newUsecase(t)
	ctx := context.Background()

	created, err := uc.Seed(ctx, "Root@Example.com", "s3cret-pass")
	if err != nil || !created {
		t.Fatalf("Seed created=%v err=%v", created, err)
	}
	u, err := repos.Users.GetByEmail(ctx, "root@example.com")
	if err != nil || u.Role != userDomain.RoleSuperAdmin {
		t.Fatalf("seeded user=%v err=%v", u, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) != nil {
		t.Fatalf("password hash does not verify")
	}

	created, err = uc.Seed(ctx, "other@example.com", "x")
	if err != nil || created {
		t.Fatalf("second Seed created=%v err=%v", created, err)
	}
	created, _ = uc.Seed(ctx, "", "")
	if created {
		t.Fatalf("empty credentials must not seed")
	}
}
