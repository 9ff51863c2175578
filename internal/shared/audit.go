package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// AuditLog represents a record stored in activity_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// Stamper renders the canonical audit timestamp.
type Stamper interface {
	LunarTimestamp(t time.Time) string
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditLogger writes records into activity_logs. Each row carries the
// Gregorian instant and its Lunar Hijri rendition.
type AuditLogger struct {
	db      execer
	stamper Stamper
	now     func() time.Time
}

// NewAuditLogger returns a new AuditLogger. db is usually a *pgxpool.Pool.
func NewAuditLogger(db execer, stamper Stamper) *AuditLogger {
	return &AuditLogger{db: db, stamper: stamper, now: time.Now}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.At.IsZero() {
		log.At = l.now()
	}
	var stamp string
	if l.stamper != nil {
		stamp = l.stamper.LunarTimestamp(log.At)
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `INSERT INTO activity_logs (actor_id, action, entity, entity_id, meta, occurred_at, occurred_at_qamari) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, log.At, stamp)
	return err
}
