// Package audit records auth gateway transitions. The API publishes events to
// the queue; the worker drains them into the auth_audit table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"college/internal/metrics"
	"college/internal/queue"
)

// MessageType tags audit entries on the shared queue.
const MessageType = "auth_audit"

// Event is one gateway transition.
type Event struct {
	Action     string    `json:"action"`
	LoginID    string    `json:"login_id"`
	Role       string    `json:"role"`
	Outcome    string    `json:"outcome"`
	ClientIP   string    `json:"client_ip"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder accepts audit events. Implementations must not fail the request.
type Recorder interface {
	Record(ctx context.Context, evt Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// QueueRecorder publishes events to a queue.
type QueueRecorder struct {
	q       queue.Queue
	timeout time.Duration
}

// NewQueueRecorder creates a recorder publishing to q.
func NewQueueRecorder(q queue.Queue) *QueueRecorder {
	return &QueueRecorder{q: q, timeout: time.Second}
}

// Record publishes evt. Publish failures are logged and counted, never returned.
func (r *QueueRecorder) Record(ctx context.Context, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.q.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		log.WithError(err).WithField("action", evt.Action).Warn("audit publish failed")
		return
	}
	metrics.AuditEvents.WithLabelValues("published").Inc()
}

// Store writes events to Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates an audit store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save inserts evt.
func (s *Store) Save(ctx context.Context, evt Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_audit (action, login_id, role, outcome, client_ip, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, evt.Action, evt.LoginID, evt.Role, evt.Outcome, evt.ClientIP, evt.OccurredAt)
	return err
}

// Drain consumes audit messages from q and saves them until ctx is done or
// the queue closes. Messages of other types and undecodable bodies are skipped.
func Drain(ctx context.Context, q queue.Queue, store *Store) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range messages {
		if msg.Type != MessageType {
			continue
		}
		var evt Event
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.WithError(err).Warn("skipping malformed audit event")
			metrics.AuditEvents.WithLabelValues("failed").Inc()
			continue
		}
		if err := store.Save(ctx, evt); err != nil {
			log.WithError(err).WithField("action", evt.Action).Error("audit save failed")
			metrics.AuditEvents.WithLabelValues("failed").Inc()
			continue
		}
		metrics.AuditEvents.WithLabelValues("stored").Inc()
	}
	return nil
}
