// Package httpapi exposes the services over HTTP/JSON.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/services"
)

type SpotifyService interface {
	ExchangeToken(ctx context.Context, ownerID, code, redirectURI string) (*services.ExchangeResponse, error)
	GetStatus(ctx context.Context, ownerID string) (*services.StatusResponse, error)
	GetPlaylists(ctx context.Context, ownerID string, limit, offset int) (*services.PlaylistsResponse, error)
	Disconnect(ctx context.Context, ownerID string) (*services.DisconnectResponse, error)
}

type PreferenceService interface {
	UpdateGenrePreferences(ctx context.Context, ownerID string, items []models.PreferenceItem) (*services.PreferencesUpdateResponse, error)
	UpdateArtistPreferences(ctx context.Context, ownerID string, items []models.PreferenceItem) (*services.PreferencesUpdateResponse, error)
	GetPreferences(ctx context.Context, ownerID string) (*services.PreferencesResponse, error)
}

type CatalogService interface {
	GetGenres(ctx context.Context) ([]models.Genre, error)
	GetArtistsByGenre(ctx context.Context, genreID int64) ([]models.Artist, error)
}

type UserService interface {
	Register(ctx context.Context, ownerID string, reg models.Registration) (*services.UserResponse, error)
	GetUserInfo(ctx context.Context, callerID, ownerID string) (*services.UserResponse, error)
	UpdateProfile(ctx context.Context, callerID, ownerID string, p models.ProfileUpdate) (*services.UserResponse, error)
}

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}
