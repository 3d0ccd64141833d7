// Package models defines server-side data models persisted in the database
// or returned by the music provider.
package models

import "time"

// SpotifyToken is one owner's connection to the provider. At most one row
// exists per OwnerID.
type SpotifyToken struct {
	OwnerID     string
	AccessToken string
	// RefreshToken is empty when the provider never issued one; such a
	// token cannot be refreshed.
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the access token is no longer usable at now.
func (t *SpotifyToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *SpotifyToken) CanRefresh() bool {
	return t.RefreshToken != ""
}
