package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	appDomain "loanflow-backend/internal/domain/application"
	userDomain "loanflow-backend/internal/domain/user"
	"loanflow-backend/internal/testutil/dbtest"
)

func TestApplicationRepository_CreateGetDelete(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	a := makeApplication("applicant00000000000000000000001", nil, appDomain.StatusPending, time.Now())
	mustCreateApp(t, repo, a)
	if a.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.Status != appDomain.StatusPending || !got.Amount.Equal(a.Amount) {
		t.Fatalf("got %+v", got)
	}

	if err := repo.Delete(ctx, a.ApplicationID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByApplicationID(ctx, a.ApplicationID); !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
	var n int64
	db.Unscoped().Model(&appDomain.Application{}).Count(&n)
	if n != 0 {
		t.Fatalf("hard delete left %d rows", n)
	}
}

func TestApplicationRepository_ListScopes(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	officer := "officer000000000000000000000001"
	other := "officer000000000000000000000002"
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a1 := makeApplication("applicant00000000000000000000001", &officer, appDomain.StatusPending, base)
	a2 := makeApplication("applicant00000000000000000000001", &officer, appDomain.StatusUnderReview, base.Add(time.Hour))
	a3 := makeApplication("applicant00000000000000000000002", &other, appDomain.StatusAdditionalInfoRequested, base.Add(2*time.Hour))
	a4 := makeApplication("applicant00000000000000000000002", nil, appDomain.StatusApproved, base.Add(3*time.Hour))
	for _, a := range []*appDomain.Application{a1, a2, a3, a4} {
		mustCreateApp(t, repo, a)
	}

	tests := []struct {
		name string
		p    userDomain.Principal
		want []string
	}{
		{"admin sees all newest first", userDomain.Principal{UserID: "x", Role: userDomain.RoleSuperAdmin}, []string{a4.ApplicationID, a3.ApplicationID, a2.ApplicationID, a1.ApplicationID}},
		{"applicant sees own", userDomain.Principal{UserID: a1.ApplicantID, Role: userDomain.RoleApplicant}, []string{a2.ApplicationID, a1.ApplicationID}},
		{"officer sees assigned", userDomain.Principal{UserID: officer, Role: userDomain.RoleLoanOfficer}, []string{a2.ApplicationID, a1.ApplicationID}},
		{"approver sees review queue", userDomain.Principal{UserID: "y", Role: userDomain.RoleApprover}, []string{a3.ApplicationID, a2.ApplicationID}},
		{"unknown role sees nothing", userDomain.Principal{UserID: "z", Role: "GUEST"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, appDomain.ListFilter{Scope: appDomain.ScopeFor(tc.p)})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if int(total) != len(tc.want) || len(got) != len(tc.want) {
				t.Fatalf("total=%d len=%d, want %d", total, len(got), len(tc.want))
			}
			for i := range tc.want {
				if got[i].ApplicationID != tc.want[i] {
					t.Fatalf("row %d = %s, want %s", i, got[i].ApplicationID, tc.want[i])
				}
			}
		})
	}

	got, total, err := repo.List(ctx, appDomain.ListFilter{Status: appDomain.StatusPending, Page: 1, Limit: 10})
	if err != nil || total != 1 || got[0].ApplicationID != a1.ApplicationID {
		t.Fatalf("status filter: total=%d err=%v", total, err)
	}

	got, total, err = repo.List(ctx, appDomain.ListFilter{Page: 2, Limit: 3})
	if err != nil || total != 4 || len(got) != 1 || got[0].ApplicationID != a1.ApplicationID {
		t.Fatalf("page 2: total=%d len=%d err=%v", total, len(got), err)
	}
}

func TestApplicationRepository_UpdateStatusCompareAndSet(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	a := makeApplication("applicant00000000000000000000001", nil, appDomain.StatusUnderReview, time.Now())
	mustCreateApp(t, repo, a)

	now := time.Now().UTC()
	toInfo := appDomain.Change{From: appDomain.StatusUnderReview, To: appDomain.StatusAdditionalInfoRequested, Note: "payslip", At: now}
	if err := repo.UpdateStatus(ctx, a.ApplicationID, toInfo); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.GetByApplicationID(ctx, a.ApplicationID)
	if got.Status != appDomain.StatusAdditionalInfoRequested || !got.AdditionalInfoRequested || got.AdditionalInfoNote != "payslip" || got.Version != 2 {
		t.Fatalf("after info request: %+v", got)
	}

	// a second writer still believing UNDER_REVIEW loses
	stale := appDomain.Change{From: appDomain.StatusUnderReview, To: appDomain.StatusApproved, At: now}
	if err := repo.UpdateStatus(ctx, a.ApplicationID, stale); !errors.Is(err, appDomain.ErrConcurrentModification) {
		t.Fatalf("stale update err = %v, want ErrConcurrentModification", err)
	}

	back := appDomain.Change{From: appDomain.StatusAdditionalInfoRequested, To: appDomain.StatusUnderReview, At: now}
	if err := repo.UpdateStatus(ctx, a.ApplicationID, back); err != nil {
		t.Fatalf("UpdateStatus back: %v", err)
	}
	got, _ = repo.GetByApplicationID(ctx, a.ApplicationID)
	if got.AdditionalInfoRequested || got.AdditionalInfoNote != "" || got.AdditionalInfoProvidedAt == nil || got.Version != 3 {
		t.Fatalf("after info provided: %+v", got)
	}

	if err := repo.UpdateStatus(ctx, "missing000000000000000000000000", stale); !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("missing err = %v, want ErrNotFound", err)
	}
}
