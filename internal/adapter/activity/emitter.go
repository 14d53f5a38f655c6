package activity

import (
	"context"
	"encoding/json"
	"time"

	domain "loanflow-backend/internal/domain/activity"
	"loanflow-backend/internal/infrastructure/broker"
	"loanflow-backend/internal/infrastructure/metrics"
	"loanflow-backend/pkg/id"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

// Emitter persists notifications and audit entries and, when a writer is
// set, streams audit entries to Kafka. Every failure is logged and counted;
// none reaches the caller.
type Emitter struct {
	repo    domain.Repository
	writer  broker.Writer
	metrics *metrics.Metrics
}

var _ domain.Emitter = (*Emitter)(nil)

// NewEmitter accepts a nil writer and nil metrics.
func NewEmitter(repo domain.Repository, writer broker.Writer, m *metrics.Metrics) *Emitter {
	return &Emitter{repo: repo, writer: writer, metrics: m}
}

func (e *Emitter) Notify(ctx context.Context, n domain.Notification) {
	if n.NotificationID == "" {
		n.NotificationID = id.NewID32()
	}
	if err := e.repo.CreateNotification(context.WithoutCancel(ctx), &n); err != nil {
		e.failed(ctx, "notification", err, logrus.Fields{"user_id": n.UserID, "application_id": deref(n.ApplicationID)})
	}
}

func (e *Emitter) Audit(ctx context.Context, a domain.AuditLog) {
	if a.AuditID == "" {
		a.AuditID = id.NewID32()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	fields := logrus.Fields{"user_id": a.ActorID, "entity_id": a.EntityID, "action": a.Action}
	if err := e.repo.CreateAudit(context.WithoutCancel(ctx), &a); err != nil {
		e.failed(ctx, "audit", err, fields)
	}
	if e.writer == nil {
		return
	}
	body, err := json.Marshal(a)
	if err != nil {
		e.failed(ctx, "audit_publish", err, fields)
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = e.writer.WriteMessages(pctx, kafka.Message{
		Key:   []byte(a.EntityID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(a.Action)},
		},
	})
	if err != nil {
		e.failed(ctx, "audit_publish", err, fields)
	}
}

func (e *Emitter) failed(ctx context.Context, kind string, err error, fields logrus.Fields) {
	e.metrics.SideEffectFailed(kind)
	logrus.WithContext(ctx).WithFields(fields).WithField("kind", kind).WithError(err).Warn("side effect dropped")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
