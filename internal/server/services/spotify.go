package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soulbeats/internal/validation"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

type ExchangeResponse struct {
	Connected bool
	ExpiresAt time.Time
	// Profile is nil when it could not be fetched right after the exchange.
	Profile *models.SpotifyProfile
	Outcome common.Outcome
}

type StatusResponse struct {
	Connected  bool
	TokenValid bool
	ExpiresAt  time.Time
	Profile    *models.SpotifyProfile
	Outcome    common.Outcome
}

type PlaylistsResponse struct {
	Playlists []models.Playlist
	Total     int
	Limit     int
	Offset    int
	Outcome   common.Outcome
}

type DisconnectResponse struct {
	Disconnected bool
	Outcome      common.Outcome
}

// SpotifyService decides per request whether the stored token is usable,
// refreshes it when it is not, and only then talks to the provider.
//
// Every call re-reads the store; nothing is cached in process. Without a
// RefreshLocker two requests may refresh the same token concurrently and the
// last UpdateToken wins.
type SpotifyService struct {
	gw          *dbx.Gateway
	repomanager repomanager.RepositoryManager
	broker      TokenBroker
	locker      RefreshLocker
	now         func() time.Time
	logger      logging.Logger
}

type SpotifyOption func(*SpotifyService)

// WithRefreshLocker collapses concurrent refreshes of one owner into one.
func WithRefreshLocker(l RefreshLocker) SpotifyOption {
	return func(s *SpotifyService) { s.locker = l }
}

func WithClock(now func() time.Time) SpotifyOption {
	return func(s *SpotifyService) { s.now = now }
}

func NewSpotifyService(gw *dbx.Gateway, m repomanager.RepositoryManager, broker TokenBroker, logger logging.Logger, opts ...SpotifyOption) *SpotifyService {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &SpotifyService{
		gw:          gw,
		repomanager: m,
		broker:      broker,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.With("module", "spotify-service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NormalizePage clamps limit to [1, MaxPageLimit] and offset to >= 0.
func NormalizePage(limit, offset int) (int, int) {
	limit = max(1, min(limit, MaxPageLimit))
	offset = max(0, offset)
	return limit, offset
}

type exchangeInput struct {
	Code        string `validate:"required"`
	RedirectURI string `validate:"required,url"`
}

// ExchangeToken completes the authorization-code flow and stores the owner's
// first token. The profile is fetched best-effort afterwards.
func (s *SpotifyService) ExchangeToken(ctx context.Context, ownerID, code, redirectURI string) (*ExchangeResponse, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	if err := validation.Struct(exchangeInput{Code: code, RedirectURI: redirectURI}); err != nil {
		return nil, err
	}

	tok, err := s.broker.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	now := s.now()
	tok.OwnerID = ownerID
	tok.CreatedAt = now
	tok.UpdatedAt = now

	repo := s.repomanager.Credentials(s.gw)
	ok, err := repo.SaveToken(ctx, ownerID, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTokenSaveFailed, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no row written for owner %s", common.ErrTokenSaveFailed, ownerID)
	}
	s.logger.Info(ctx, "spotify account connected", "owner_id", ownerID, "expires_at", tok.ExpiresAt)

	profile, err := s.broker.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		s.logger.Warn(ctx, "profile fetch after exchange failed", "owner_id", ownerID, "error", err)
		profile = nil
	}

	return &ExchangeResponse{
		Connected: true,
		ExpiresAt: tok.ExpiresAt,
		Profile:   profile,
		Outcome:   common.Success("Spotify account connected"),
	}, nil
}

// GetStatus reports the state of the owner's connection. Token states
// (not connected, expired, refresh failed, invalid) are part of the response,
// not errors.
func (s *SpotifyService) GetStatus(ctx context.Context, ownerID string) (*StatusResponse, error) {
	tok, err := s.usableToken(ctx, ownerID)
	switch {
	case errors.Is(err, common.ErrNotConnected):
		return &StatusResponse{Outcome: common.Describe(err)}, nil
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrTokenRefreshFailed):
		return &StatusResponse{Connected: true, Outcome: common.Describe(err)}, nil
	case err != nil:
		return nil, err
	}

	resp := &StatusResponse{Connected: true, ExpiresAt: tok.ExpiresAt}

	// the provider is authoritative over local expiry bookkeeping
	if !s.broker.Validate(ctx, tok.AccessToken) {
		resp.Outcome = common.Describe(common.ErrTokenInvalid)
		return resp, nil
	}
	resp.TokenValid = true

	profile, err := s.broker.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		s.logger.Warn(ctx, "profile fetch for status failed", "owner_id", ownerID, "error", err)
	} else {
		resp.Profile = profile
	}

	resp.Outcome = common.Success("Spotify connection is active")
	return resp, nil
}

// GetPlaylists returns one page of the owner's playlists. limit and offset
// are normalized before the provider sees them.
func (s *SpotifyService) GetPlaylists(ctx context.Context, ownerID string, limit, offset int) (*PlaylistsResponse, error) {
	limit, offset = NormalizePage(limit, offset)

	tok, err := s.usableToken(ctx, ownerID)
	if errors.Is(err, common.ErrNotConnected) {
		return &PlaylistsResponse{Playlists: []models.Playlist{}, Limit: limit, Offset: offset, Outcome: common.Describe(err)}, nil
	}
	if err != nil {
		return nil, err
	}

	page, err := s.broker.FetchPlaylists(ctx, tok.AccessToken, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch playlists: %w", err)
	}

	return &PlaylistsResponse{
		Playlists: page.Items,
		Total:     page.Total,
		Limit:     limit,
		Offset:    offset,
		Outcome:   common.Success(fmt.Sprintf("Retrieved %d playlists", len(page.Items))),
	}, nil
}

// Disconnect forgets the owner's token.
func (s *SpotifyService) Disconnect(ctx context.Context, ownerID string) (*DisconnectResponse, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	repo := s.repomanager.Credentials(s.gw)

	exists, err := repo.TokenExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &DisconnectResponse{Outcome: common.Describe(common.ErrNotConnected)}, nil
	}

	if _, err := repo.DeleteToken(ctx, ownerID); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "spotify account disconnected", "owner_id", ownerID)

	return &DisconnectResponse{Disconnected: true, Outcome: common.Success("Spotify account disconnected")}, nil
}

// usableToken loads the owner's token and refreshes it when expired.
// The refreshed token is stored before it is returned.
func (s *SpotifyService) usableToken(ctx context.Context, ownerID string) (*models.SpotifyToken, error) {
	if ownerID == "" {
		return nil, common.ErrorUnauthorized
	}
	repo := s.repomanager.Credentials(s.gw)

	tok, err := s.loadToken(ctx, repo, ownerID)
	if err != nil {
		return nil, err
	}
	if !tok.IsExpired(s.now()) {
		return tok, nil
	}
	if !tok.CanRefresh() {
		return nil, fmt.Errorf("%w: owner %s has no refresh token", common.ErrTokenExpired, ownerID)
	}

	if s.locker != nil {
		release, err := s.locker.Lock(ctx, ownerID)
		if err != nil {
			s.logger.Warn(ctx, "refresh lock unavailable, refreshing unlocked", "owner_id", ownerID, "error", err)
		} else {
			defer func() {
				if err := release(); err != nil {
					s.logger.Warn(ctx, "refresh lock release failed", "owner_id", ownerID, "error", err)
				}
			}()

			// another request may have refreshed while this one waited
			if tok, err = s.loadToken(ctx, repo, ownerID); err != nil {
				return nil, err
			}
			if !tok.IsExpired(s.now()) {
				return tok, nil
			}
			if !tok.CanRefresh() {
				return nil, fmt.Errorf("%w: owner %s has no refresh token", common.ErrTokenExpired, ownerID)
			}
		}
	}

	return s.refresh(ctx, repo, ownerID, tok)
}

func (s *SpotifyService) loadToken(ctx context.Context, repo credentials.Repository, ownerID string) (*models.SpotifyToken, error) {
	tok, err := repo.GetToken(ctx, ownerID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: owner %s", common.ErrNotConnected, ownerID)
	}
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *SpotifyService) refresh(ctx context.Context, repo credentials.Repository, ownerID string, stale *models.SpotifyToken) (*models.SpotifyToken, error) {
	fresh, err := s.broker.Refresh(ctx, stale.RefreshToken)
	if err != nil {
		s.logger.Warn(ctx, "token refresh failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrTokenRefreshFailed, err)
	}

	fresh.OwnerID = ownerID
	fresh.CreatedAt = stale.CreatedAt
	fresh.UpdatedAt = s.now()
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = stale.RefreshToken
	}

	ok, err := repo.UpdateToken(ctx, ownerID, fresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTokenSaveFailed, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: token of owner %s vanished during refresh", common.ErrTokenSaveFailed, ownerID)
	}
	s.logger.Debug(ctx, "token refreshed", "owner_id", ownerID, "expires_at", fresh.ExpiresAt)

	return fresh, nil
}
