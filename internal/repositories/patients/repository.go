package patients

import (
	"context"
	"time"

	"github.com/clinicore/clinicore/internal/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.PatientRecord) (*models.PatientRecord, error)
	GetByID(ctx context.Context, id string) (*models.PatientRecord, error)
	List(ctx context.Context) ([]*models.PatientRecord, error)
	Update(ctx context.Context, rec *models.PatientRecord) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteOlderThan removes every record whose creation timestamp is at or
	// before cutoff and returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
