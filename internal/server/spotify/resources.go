package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/soulbeats/internal/server/models"
)

type image struct {
	URL string `json:"url"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type profileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
	Followers   struct {
		Total int `json:"total"`
	} `json:"followers"`
	Images       []image      `json:"images"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type playlistResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        *bool  `json:"public"`
	Collaborative bool   `json:"collaborative"`
	SnapshotID    string `json:"snapshot_id"`
	Tracks        struct {
		Total int `json:"total"`
	} `json:"tracks"`
	ExternalURLs externalURLs `json:"external_urls"`
	Images       []image      `json:"images"`
	Owner        struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

type playlistPageResponse struct {
	Items  []playlistResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type apiErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Validate checks accessToken against the provider. It reports false on any
// non-success answer or transport failure and never returns an error.
func (c *Client) Validate(ctx context.Context, accessToken string) bool {
	resp, err := c.get(ctx, accessToken, "/me", nil)
	if err != nil {
		c.logger.Debug(ctx, "token validation failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodyBytes))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*models.SpotifyProfile, error) {
	var p profileResponse
	if err := c.getJSON(ctx, accessToken, "/me", nil, &p); err != nil {
		return nil, err
	}

	return &models.SpotifyProfile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Country:     p.Country,
		Product:     p.Product,
		Followers:   p.Followers.Total,
		ImageURL:    firstImage(p.Images),
		ExternalURL: p.ExternalURLs.Spotify,
	}, nil
}

// FetchPlaylists returns one page of the token owner's playlists. limit and
// offset are sent as given.
func (c *Client) FetchPlaylists(ctx context.Context, accessToken string, limit, offset int) (*models.PlaylistPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page playlistPageResponse
	if err := c.getJSON(ctx, accessToken, "/me/playlists", q, &page); err != nil {
		return nil, err
	}

	out := &models.PlaylistPage{
		Items:  make([]models.Playlist, 0, len(page.Items)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for _, p := range page.Items {
		out.Items = append(out.Items, models.Playlist{
			ID:               p.ID,
			Name:             p.Name,
			Description:      p.Description,
			Public:           p.Public != nil && *p.Public,
			Collaborative:    p.Collaborative,
			SnapshotID:       p.SnapshotID,
			TracksTotal:      p.Tracks.Total,
			ExternalURL:      p.ExternalURLs.Spotify,
			ImageURL:         firstImage(p.Images),
			OwnerID:          p.Owner.ID,
			OwnerDisplayName: p.Owner.DisplayName,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, path string, q url.Values, dst any) error {
	resp, err := c.get(ctx, accessToken, path, q)
	if err != nil {
		return apiError(0, "", fmt.Errorf("GET %s: %w", path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return apiError(resp.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(ctx, "provider api call failed", "path", path, "status", resp.StatusCode)
		return apiError(resp.StatusCode, describeAPIError(body), nil)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apiError(resp.StatusCode, "", fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// get builds a new request for every call so no Authorization header is
// ever carried over from a previous one.
func (c *Client) get(ctx context.Context, accessToken, path string, q url.Values) (*http.Response, error) {
	u := c.api + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

func describeAPIError(body []byte) string {
	var e apiErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func firstImage(images []image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
