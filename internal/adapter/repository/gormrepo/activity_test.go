package gormrepo

import (
	"context"
	"testing"

	"loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/testutil/dbtest"
	"loanflow-backend/pkg/id"
)

func TestActivityRepository_ListNotifications(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		n := &activity.Notification{NotificationID: id.NewID32(), UserID: "u1", Title: title, Message: "m"}
		if err := repo.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}
	other := &activity.Notification{NotificationID: id.NewID32(), UserID: "u2", Title: "x", Message: "m"}
	if err := repo.CreateNotification(ctx, other); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListNotifications(ctx, "u1", 0)
	if err != nil || len(got) != 2 {
		t.Fatalf("List = %v, %v", got, err)
	}
	if got[0].Title != "second" {
		t.Fatalf("first = %q, want newest", got[0].Title)
	}
}
