package httpapi

import (
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

type exchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

type preferenceItemDTO struct {
	ID    int64 `json:"id"`
	Level int   `json:"level"`
}

type preferencesRequest struct {
	Preferences []preferenceItemDTO `json:"preferences"`
}

type profileDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	Followers   int    `json:"followers"`
	ImageURL    string `json:"image_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
}

type exchangeResponse struct {
	Connected bool        `json:"connected"`
	ExpiresAt time.Time   `json:"expires_at"`
	Profile   *profileDTO `json:"profile,omitempty"`
	common.Outcome
}

type statusResponse struct {
	Connected  bool        `json:"connected"`
	TokenValid bool        `json:"token_valid"`
	ExpiresAt  *time.Time  `json:"expires_at,omitempty"`
	Profile    *profileDTO `json:"profile,omitempty"`
	common.Outcome
}

type playlistDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Public           bool   `json:"public"`
	Collaborative    bool   `json:"collaborative"`
	SnapshotID       string `json:"snapshot_id"`
	TracksTotal      int    `json:"tracks_total"`
	ExternalURL      string `json:"external_url,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
	OwnerID          string `json:"owner_id"`
	OwnerDisplayName string `json:"owner_display_name"`
}

type playlistsResponse struct {
	Playlists []playlistDTO `json:"playlists"`
	Total     int           `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
	common.Outcome
}

type disconnectResponse struct {
	Disconnected bool `json:"disconnected"`
	common.Outcome
}

type preferenceDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

type preferencesResponse struct {
	Genres  []preferenceDTO `json:"genres"`
	Artists []preferenceDTO `json:"artists"`
	common.Outcome
}

type preferencesUpdateResponse struct {
	UpdatedCount int `json:"updated_count"`
	common.Outcome
}

type genreDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IconURL      string `json:"icon_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

type artistDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	SpotifyID  string `json:"spotify_id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	GenreID    int64  `json:"genre_id"`
	Popularity int    `json:"popularity"`
}

func toProfileDTO(p *models.SpotifyProfile) *profileDTO {
	if p == nil {
		return nil
	}
	return &profileDTO{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Country:     p.Country,
		Product:     p.Product,
		Followers:   p.Followers,
		ImageURL:    p.ImageURL,
		ExternalURL: p.ExternalURL,
	}
}

func toPlaylistDTOs(ps []models.Playlist) []playlistDTO {
	out := make([]playlistDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, playlistDTO{
			ID:               p.ID,
			Name:             p.Name,
			Description:      p.Description,
			Public:           p.Public,
			Collaborative:    p.Collaborative,
			SnapshotID:       p.SnapshotID,
			TracksTotal:      p.TracksTotal,
			ExternalURL:      p.ExternalURL,
			ImageURL:         p.ImageURL,
			OwnerID:          p.OwnerID,
			OwnerDisplayName: p.OwnerDisplayName,
		})
	}
	return out
}

func toPreferenceDTOs(ps []models.Preference) []preferenceDTO {
	out := make([]preferenceDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, preferenceDTO{ID: p.EntityID, Name: p.EntityName, Level: p.Level, UpdatedAt: p.UpdatedAt})
	}
	return out
}

func toPreferenceItems(in []preferenceItemDTO) []models.PreferenceItem {
	out := make([]models.PreferenceItem, 0, len(in))
	for _, it := range in {
		out = append(out, models.PreferenceItem{EntityID: it.ID, Level: it.Level})
	}
	return out
}

type userDTO struct {
	ID                int64     `json:"id"`
	OwnerID           string    `json:"owner_id"`
	DisplayName       string    `json:"display_name"`
	Email             string    `json:"email"`
	Age               *int      `json:"age,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	FavoriteGenres    *string   `json:"favorite_genres,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	RegisteredAt      time.Time `json:"registered_at"`
}

type userResponse struct {
	User *userDTO `json:"user,omitempty"`
	common.Outcome
}

func toUserDTO(u *models.User) *userDTO {
	if u == nil {
		return nil
	}
	return &userDTO{
		ID:                u.ID,
		OwnerID:           u.OwnerID,
		DisplayName:       u.DisplayName,
		Email:             u.Email,
		Age:               u.Age,
		Bio:               u.Bio,
		FavoriteGenres:    u.FavoriteGenres,
		ProfilePictureURL: u.ProfilePictureURL,
		RegisteredAt:      u.RegisteredAt,
	}
}
