package credentials

import (
	"context"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

// Repository stores per-owner provider tokens and music preferences.
// Absent tokens are reported as common.ErrorNotFound.
type Repository interface {
	GetToken(ctx context.Context, ownerID string) (*models.SpotifyToken, error)
	SaveToken(ctx context.Context, ownerID string, token *models.SpotifyToken) (bool, error)
	UpdateToken(ctx context.Context, ownerID string, token *models.SpotifyToken) (bool, error)
	TokenExists(ctx context.Context, ownerID string) (bool, error)
	DeleteToken(ctx context.Context, ownerID string) (bool, error)

	GetPreferences(ctx context.Context, ownerID string, kind models.PreferenceKind) ([]models.Preference, error)
	UpsertPreferences(ctx context.Context, ownerID string, kind models.PreferenceKind, items []models.PreferenceItem) (bool, error)
}
