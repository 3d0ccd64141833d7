// Package spotify talks to the Spotify accounts service and Web API: it
// exchanges and refreshes OAuth tokens and fetches the caller's profile and
// playlists.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"golang.org/x/oauth2"
)

const (
	DefaultTokenURL   = "https://accounts.spotify.com/api/token"
	DefaultAPIBaseURL = "https://api.spotify.com/v1"
	defaultTimeout    = 30 * time.Second
	// longest token lifetime accepted from the provider
	maxExpiresInSeconds = 366 * 24 * 60 * 60
	// cap on any provider response body we read
	maxResponseBodyBytes = 1 << 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Timeout      time.Duration
	Now          func() time.Time
	HTTPClient   *http.Client
}

// Client is the OAuth token broker for Spotify.
type Client struct {
	oauth  oauth2.Config
	api    string
	http   *http.Client
	now    func() time.Time
	logger logging.Logger
}

func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("spotify: client id is required")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		api:    strings.TrimRight(cfg.APIBaseURL, "/"),
		http:   cfg.HTTPClient,
		now:    cfg.Now,
		logger: logger.With("module", "spotify"),
	}, nil
}

// ExchangeCode performs the authorization-code grant.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*models.SpotifyToken, error) {
	cfg := c.oauth
	cfg.RedirectURL = redirectURI

	tok, err := cfg.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		c.logger.Warn(ctx, "code exchange rejected", "error", err)
		return nil, retrieveError(err)
	}
	return c.toToken(tok, "")
}

// Refresh performs the refresh-token grant. When the provider does not rotate
// the refresh token, refreshToken is carried over to the result.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.SpotifyToken, error) {
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})

	tok, err := src.Token()
	if err != nil {
		c.logger.Warn(ctx, "token refresh rejected", "error", err)
		return nil, retrieveError(err)
	}
	return c.toToken(tok, refreshToken)
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// toToken stamps ExpiresAt from the relative expires_in of the response.
func (c *Client) toToken(tok *oauth2.Token, previousRefresh string) (*models.SpotifyToken, error) {
	expiresIn, ok := expiresInSeconds(tok)
	if !ok {
		return nil, authError(0, "invalid_response", "token response has no usable expires_in", nil)
	}

	now := c.now()
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	scope, _ := tok.Extra("scope").(string)

	return &models.SpotifyToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		TokenType:    tokenType,
		Scope:        scope,
		ExpiresAt:    now.Add(time.Duration(expiresIn) * time.Second),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// expiresInSeconds rejects lifetimes that are missing, not positive or
// longer than maxExpiresInSeconds.
func expiresInSeconds(tok *oauth2.Token) (int64, bool) {
	var n int64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		if v <= 0 || v > maxExpiresInSeconds {
			return 0, false
		}
		n = int64(v)
	case int64:
		n = v
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	return n, n > 0 && n <= maxExpiresInSeconds
}

func retrieveError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return authError(0, "", "", fmt.Errorf("token request: %w", err))
	}

	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	if re.ErrorCode != "" {
		return authError(status, re.ErrorCode, re.ErrorDescription, nil)
	}
	return authError(status, "", strings.TrimSpace(string(re.Body)), nil)
}
