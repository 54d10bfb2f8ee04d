package logs

import (
	"context"

	"github.com/clinicore/clinicore/internal/models"
)

type Repository interface {
	// Append inserts a single audit entry. Entries are never updated or
	// deleted through this interface.
	Append(ctx context.Context, entry *models.AuditEntry) error

	// List returns entries newest-first, capped at limit.
	List(ctx context.Context, limit int) ([]*models.AuditEntry, error)
}
