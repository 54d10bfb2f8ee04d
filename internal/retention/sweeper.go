package retention

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/repositories/repomanager"
)

// Result summarizes one retention sweep.
type Result struct {
	DeletedNow    int64
	TotalDeleted  int64
	RetentionDays int
}

// Sweeper deletes patient records older than the configured horizon and
// keeps the persisted run statistics up to date.
type Sweeper struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	policy *PolicyStore
	audit  *audit.Recorder
	log    logging.Logger
	now    func() time.Time
}

func NewSweeper(db *sql.DB, rm repomanager.RepositoryManager, policy *PolicyStore, rec *audit.Recorder, log logging.Logger) *Sweeper {
	return &Sweeper{
		db:     db,
		rm:     rm,
		policy: policy,
		audit:  rec,
		log:    log.With("component", "retention"),
		now:    time.Now,
	}
}

// Run executes one sweep: records created at or before now−horizon are
// deleted (the boundary is inclusive, so a record exactly at the horizon
// goes), the policy counters are persisted, and a "gdpr_delete" audit entry
// is written when anything was removed. A sweep that deletes nothing leaves
// no audit trace, so repeated no-op runs do not flood the log.
//
// An empty role is recorded as "system". Storage failures propagate wrapped
// in common.ErrStorage.
func (s *Sweeper) Run(ctx context.Context, actorID *string, role string) (Result, error) {
	if role == "" {
		role = models.ActorRoleSystem
	}

	p, err := s.policy.Load()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	cutoff := s.now().AddDate(0, 0, -p.RetentionDays)

	var deleted int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = s.rm.Patients(tx).DeleteOlderThan(ctx, cutoff)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	runAt := s.now()
	p, err = s.policy.Update(func(p *models.RetentionPolicy) {
		p.LastRun = &runAt
		p.LastDeleted = deleted
		p.TotalDeleted += deleted
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if deleted > 0 {
		s.audit.Record(ctx, actorID, role, "gdpr_delete",
			fmt.Sprintf("Deleted %d patient records older than %d days.", deleted, p.RetentionDays))
	}

	s.log.Info(ctx, "retention sweep finished",
		"deleted", deleted, "total_deleted", p.TotalDeleted, "retention_days", p.RetentionDays)

	return Result{
		DeletedNow:    deleted,
		TotalDeleted:  p.TotalDeleted,
		RetentionDays: p.RetentionDays,
	}, nil
}

// SetRetentionDays updates the horizon only; no records are touched until
// the next sweep.
func (s *Sweeper) SetRetentionDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: retention horizon must be positive, got %d", common.ErrValidation, days)
	}

	_, err := s.policy.Update(func(p *models.RetentionPolicy) {
		p.RetentionDays = days
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

// Policy returns the current persisted policy.
func (s *Sweeper) Policy() (models.RetentionPolicy, error) {
	return s.policy.Load()
}
