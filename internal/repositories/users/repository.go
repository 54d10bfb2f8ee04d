package users

import (
	"context"

	"github.com/clinicore/clinicore/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateCredential(ctx context.Context, userID string, credential string) (bool, error)
}
