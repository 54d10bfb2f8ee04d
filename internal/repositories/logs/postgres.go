package logs

import (
	"context"
	"fmt"

	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.AuditEntry) error {

	query :=
		`INSERT INTO logs (user_id, role, action, timestamp, detail)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		entry.ActorID, entry.Role, string(entry.Action), entry.Timestamp, entry.Detail)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*models.AuditEntry, error) {

	query :=
		`SELECT id, user_id, role, action, timestamp, detail FROM logs
		 ORDER BY id DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		var action string
		err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Role, &action, &entry.Timestamp, &entry.Detail)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entry.Action = models.Action(action)
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
