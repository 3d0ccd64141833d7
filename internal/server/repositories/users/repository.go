package users

import (
	"context"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

// Repository stores registered users and their action history.
// Absent users are reported as common.ErrorNotFound.
type Repository interface {
	GetUser(ctx context.Context, ownerID string) (*models.User, error)
	UserExists(ctx context.Context, ownerID string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, ownerID string, p models.ProfileUpdate) (bool, error)
}
