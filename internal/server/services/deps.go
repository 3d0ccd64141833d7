// Package services contains server-side business logic: the Spotify token
// lifecycle, music preferences, the catalog and user accounts.
package services

import (
	"context"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

// TokenBroker is the provider side of the token lifecycle.
type TokenBroker interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*models.SpotifyToken, error)
	Refresh(ctx context.Context, refreshToken string) (*models.SpotifyToken, error)
	Validate(ctx context.Context, accessToken string) bool
	FetchProfile(ctx context.Context, accessToken string) (*models.SpotifyProfile, error)
	FetchPlaylists(ctx context.Context, accessToken string, limit, offset int) (*models.PlaylistPage, error)
}

// RefreshLocker serializes refreshes of one owner's token across requests
// and processes. Lock returns a release func.
type RefreshLocker interface {
	Lock(ctx context.Context, ownerID string) (func() error, error)
}
