package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpotifyToken_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future", now.Add(time.Second), false},
		{"exactly now", now, true},
		{"past", now.Add(-10 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &SpotifyToken{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, tok.IsExpired(now))
		})
	}
}

func TestSpotifyToken_CanRefresh(t *testing.T) {
	assert.True(t, (&SpotifyToken{RefreshToken: "RT1"}).CanRefresh())
	assert.False(t, (&SpotifyToken{}).CanRefresh())
}

func TestPreferenceKind_Valid(t *testing.T) {
	assert.True(t, PreferenceGenre.Valid())
	assert.True(t, PreferenceArtist.Valid())
	assert.False(t, PreferenceKind("album").Valid())
}
