// Package repomanager builds repositories over a shared database handle and
// runs schema migrations. It is the single place that knows which concrete
// repository implementations back the storage contract.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/repositories/logs"
	"github.com/clinicore/clinicore/internal/repositories/patients"
	"github.com/clinicore/clinicore/internal/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Patients(db dbx.DBTX) patients.Repository
	Logs(db dbx.DBTX) logs.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
