package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanflow-backend/internal/domain/activity"
	appDomain "loanflow-backend/internal/domain/application"
	"loanflow-backend/internal/domain/uow"
	"loanflow-backend/internal/testutil/dbtest"
	"loanflow-backend/pkg/id"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := dbtest.Open(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	a := makeApplication("applicant00000000000000000000001", nil, appDomain.StatusPending, time.Now())
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Applications.Create(ctx, a); err != nil {
			return err
		}
		return r.Activity.CreateAudit(ctx, &activity.AuditLog{
			AuditID: id.NewID32(), ActorID: a.ApplicantID, Action: activity.ActionSubmit,
			Entity: "application", EntityID: a.ApplicationID,
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if _, err := NewApplicationRepository(db).GetByApplicationID(ctx, a.ApplicationID); err != nil {
		t.Fatalf("committed row missing: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := dbtest.Open(t)
	guow := NewGormUoW(db)
	ctx := context.Background()
	boom := errors.New("boom")

	a := makeApplication("applicant00000000000000000000001", nil, appDomain.StatusPending, time.Now())
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Applications.Create(ctx, a); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := NewApplicationRepository(db).GetByApplicationID(ctx, a.ApplicationID); !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("row survived rollback: %v", err)
	}
}

func TestGormUoW_WithinApplicationTx(t *testing.T) {
	db := dbtest.Open(t)
	guow := NewGormUoW(db)
	ctx := context.Background()

	a := makeApplication("applicant00000000000000000000001", nil, appDomain.StatusPending, time.Now())
	mustCreateApp(t, NewApplicationRepository(db), a)

	err := guow.WithinApplicationTx(ctx, a.ApplicationID, func(r uow.Repos, locked *appDomain.Application) error {
		if locked.ApplicationID != a.ApplicationID {
			t.Fatalf("locked wrong row")
		}
		return r.Applications.UpdateStatus(ctx, locked.ApplicationID, appDomain.Change{
			From: locked.Status, To: appDomain.StatusUnderReview, At: time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("WithinApplicationTx: %v", err)
	}

	err = guow.WithinApplicationTx(ctx, "missing", func(uow.Repos, *appDomain.Application) error {
		t.Fatalf("fn must not run for a missing application")
		return nil
	})
	if !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
