// Package audit implements the append-only audit log. Recording is
// best-effort by contract: storage failures are downgraded to a diagnostic
// log line and never propagated, so audit logging can never abort the
// business operation that triggered it. This is a deliberate
// availability-over-durability tradeoff that authentication and the access
// guard depend on.
package audit

import (
	"context"
	"time"

	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/repositories/logs"
)

type Recorder struct {
	repo logs.Repository
	log  logging.Logger
	now  func() time.Time
}

func NewRecorder(repo logs.Repository, log logging.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  log.With("component", "audit"),
		now:  time.Now,
	}
}

// Record appends one audit entry. The action tag is normalized to the closed
// vocabulary; unknown tags become "other". actorID is nil for anonymous or
// system actions. Record never returns an error.
func (r *Recorder) Record(ctx context.Context, actorID *string, role string, action string, detail string) {
	entry := &models.AuditEntry{
		ActorID:   actorID,
		Role:      role,
		Action:    models.NormalizeAction(action),
		Timestamp: r.now(),
		Detail:    detail,
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.log.Error(ctx, "could not record audit entry",
			"action", string(entry.Action), "role", role, "error", err)
	}
}

// Recent returns up to limit of the newest entries. Unlike Record this is a
// plain read and propagates storage errors.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	return r.repo.List(ctx, limit)
}
