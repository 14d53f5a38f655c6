// Package activity holds the side-effect records produced by workflow
// actions. Nothing in the workflow reads them back.
package activity

import (
	"context"
	"time"
)

// Table: notifications
type Notification struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	NotificationID string    `gorm:"column:notification_id;type:char(32);not null;uniqueIndex" json:"notification_id"`
	UserID         string    `gorm:"column:user_id;type:char(32);not null;index" json:"user_id"`
	ApplicationID  *string   `gorm:"column:application_id;type:char(32);index" json:"application_id,omitempty"`
	Title          string    `gorm:"column:title;size:200;not null" json:"title"`
	Message        string    `gorm:"column:message;type:text;not null" json:"message"`
	IsRead         bool      `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// Table: audit_logs
type AuditLog struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AuditID    string    `gorm:"column:audit_id;type:char(32);not null;uniqueIndex" json:"audit_id"`
	ActorID    string    `gorm:"column:actor_id;type:char(32);not null;index" json:"actor_id"`
	ActorRole  string    `gorm:"column:actor_role;size:20" json:"actor_role"`
	Action     string    `gorm:"column:action;size:64;not null" json:"action"`
	Entity     string    `gorm:"column:entity;size:64;not null" json:"entity"`
	EntityID   string    `gorm:"column:entity_id;type:char(32);not null;index" json:"entity_id"`
	FromStatus string    `gorm:"column:from_status;size:32" json:"from_status,omitempty"`
	ToStatus   string    `gorm:"column:to_status;size:32" json:"to_status,omitempty"`
	Detail     string    `gorm:"column:detail;type:text" json:"detail,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Audit actions.
const (
	ActionSubmit         = "application.submit"
	ActionTransition     = "application.transition"
	ActionReview         = "application.review"
	ActionDisburse       = "loan.disburse"
	ActionRepayment      = "loan.repayment"
	ActionDocumentUpload = "document.upload"
	ActionDocumentReview = "document.review"
	ActionDocumentDelete = "document.delete"
	ActionRateCreate     = "interest_rate.create"
	ActionRateDelete     = "interest_rate.delete"
	ActionUserUpdate     = "user.update"
	ActionUserRegister   = "user.register"
)

// Emitter accepts side effects. Implementations never report failure to the
// caller: a lost notification must not undo the action that produced it.
type Emitter interface {
	Notify(ctx context.Context, n Notification)
	Audit(ctx context.Context, a AuditLog)
}

type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	CreateAudit(ctx context.Context, a *AuditLog) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}
func (Nop) Audit(context.Context, AuditLog)      {}
