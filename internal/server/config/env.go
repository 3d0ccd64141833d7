package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment and the .env file.
// A variable set in the environment wins over the same one in the file; a
// missing file is not an error.
//
// Recognised variables:
//
//	HTTP_ADDR, DATABASE_DSN, SECRET_KEY,
//	SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_TOKEN_URL,
//	SPOTIFY_API_BASE_URL, SPOTIFY_TIMEOUT, TOKEN_ENCRYPTION_KEY,
//	REDIS_ADDR, REFRESH_LOCK_TTL, RATE_LIMIT, RATE_BURST,
//	LOG_LEVEL, LOG_FORMAT
func parseEnv(config *Config, envFile string, lookup func(string) (string, bool)) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok && v != ""
	}

	strs := map[string]*string{
		"HTTP_ADDR":             &config.HTTPAddr,
		"DATABASE_DSN":          &config.DatabaseDSN,
		"SECRET_KEY":            &config.SecretKey,
		"SPOTIFY_CLIENT_ID":     &config.SpotifyClientID,
		"SPOTIFY_CLIENT_SECRET": &config.SpotifyClientSecret,
		"SPOTIFY_TOKEN_URL":     &config.SpotifyTokenURL,
		"SPOTIFY_API_BASE_URL":  &config.SpotifyAPIBaseURL,
		"TOKEN_ENCRYPTION_KEY":  &config.TokenEncryptionKey,
		"REDIS_ADDR":            &config.RedisAddr,
		"LOG_LEVEL":             &config.LogLevel,
		"LOG_FORMAT":            &config.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SPOTIFY_TIMEOUT":  &config.SpotifyTimeout,
		"REFRESH_LOCK_TTL": &config.RefreshLockTTL,
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
		config.RateLimit = f
	}
	if v, ok := get("RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_BURST: %w", err)
		}
		config.RateBurst = n
	}
	return nil
}
