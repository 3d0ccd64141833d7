package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/soulbeats/internal/flagx"
	"github.com/dmitrijs2005/soulbeats/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr            string         `json:"http_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	SpotifyClientID     string         `json:"spotify_client_id"`
	SpotifyClientSecret string         `json:"spotify_client_secret"`
	SpotifyTokenURL     string         `json:"spotify_token_url"`
	SpotifyAPIBaseURL   string         `json:"spotify_api_base_url"`
	SpotifyTimeout      timex.Duration `json:"spotify_timeout"`
	TokenEncryptionKey  string         `json:"token_encryption_key"`
	RedisAddr           string         `json:"redis_addr"`
	RefreshLockTTL      timex.Duration `json:"refresh_lock_ttl"`
	RateLimit           *float64       `json:"rate_limit"`
	RateBurst           *int           `json:"rate_burst"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays values from the JSON file named by -c/-config. Only
// fields present in the file replace the current values. No flag means no
// file is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config %s: %w", jsonConfigFile, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SpotifyClientID, c.SpotifyClientID)
	setString(&config.SpotifyClientSecret, c.SpotifyClientSecret)
	setString(&config.SpotifyTokenURL, c.SpotifyTokenURL)
	setString(&config.SpotifyAPIBaseURL, c.SpotifyAPIBaseURL)
	setString(&config.TokenEncryptionKey, c.TokenEncryptionKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.SpotifyTimeout.Duration > 0 {
		config.SpotifyTimeout = c.SpotifyTimeout.Duration
	}
	if c.RefreshLockTTL.Duration > 0 {
		config.RefreshLockTTL = c.RefreshLockTTL.Duration
	}
	if c.RateLimit != nil {
		config.RateLimit = *c.RateLimit
	}
	if c.RateBurst != nil {
		config.RateBurst = *c.RateBurst
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
