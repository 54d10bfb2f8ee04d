// Package app assembles the application: configuration, key material,
// database, repositories, audit log, services, access guard and retention
// sweeper. It owns the process-lifetime resources and hands out the wired
// components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clinicore/clinicore/internal/access"
	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/config"
	"github.com/clinicore/clinicore/internal/logging"
	"github.com/clinicore/clinicore/internal/privacy"
	"github.com/clinicore/clinicore/internal/repositories/repomanager"
	"github.com/clinicore/clinicore/internal/retention"
	"github.com/clinicore/clinicore/internal/services"
)

type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Audit   *audit.Recorder
	Users   *services.UserService
	Records *services.RecordService
	Guard   *access.Guard
	Sweeper *retention.Sweeper

	db *sql.DB
}

// NewApp wires the full application from cfg. Migrations run before any
// component touches the database; the encryption key is loaded (or created)
// before the privacy engine exists, so a key problem fails startup instead
// of the first encrypt call.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	key, err := privacy.LoadOrCreateKey(cfg.KeyFilePath)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}

	engine, err := privacy.NewEngine(key)
	if err != nil {
		return nil, fmt.Errorf("privacy engine init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	recorder := audit.NewRecorder(rm.Logs(db), logger)
	policy := retention.NewPolicyStore(cfg.RetentionFilePath)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Audit:   recorder,
		Users:   services.NewUserService(db, rm, recorder, logger),
		Records: services.NewRecordService(db, rm, engine, recorder, logger),
		Guard:   access.NewGuard([]byte(cfg.SessionSecret), cfg.SessionValidityDuration, recorder),
		Sweeper: retention.NewSweeper(db, rm, policy, recorder, logger),
		db:      db,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}
