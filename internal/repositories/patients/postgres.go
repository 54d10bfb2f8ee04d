package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/common"
	"github.com/clinicore/clinicore/internal/dbx"
	"github.com/clinicore/clinicore/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, name, contact, diagnosis, anonymized_name, anonymized_contact, created_at`

func (r *PostgresRepository) Create(ctx context.Context, rec *models.PatientRecord) (*models.PatientRecord, error) {

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query :=
		`INSERT INTO patients (id, name, contact, diagnosis, anonymized_name, anonymized_contact, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Contact, rec.Diagnosis,
		rec.AnonymizedName, rec.AnonymizedContact, rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PatientRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM patients WHERE id = $1`

	rec := &models.PatientRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Contact, &rec.Diagnosis,
		&rec.AnonymizedName, &rec.AnonymizedContact, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.PatientRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM patients ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PatientRecord
	for rows.Next() {
		rec := &models.PatientRecord{}
		err := rows.Scan(&rec.ID, &rec.Name, &rec.Contact, &rec.Diagnosis,
			&rec.AnonymizedName, &rec.AnonymizedContact, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update rewrites the raw, derived and encrypted fields together so the
// anonymized columns can never drift from the raw ones.
func (r *PostgresRepository) Update(ctx context.Context, rec *models.PatientRecord) (bool, error) {
	query :=
		`UPDATE patients
		 SET name = $1, contact = $2, diagnosis = $3, anonymized_name = $4, anonymized_contact = $5
		 WHERE id = $6
		 `

	res, err := r.db.ExecContext(ctx, query,
		rec.Name, rec.Contact, rec.Diagnosis,
		rec.AnonymizedName, rec.AnonymizedContact, rec.ID)

	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected == 1, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM patients WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected == 1, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM patients WHERE created_at <= $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return deleted, nil
}
