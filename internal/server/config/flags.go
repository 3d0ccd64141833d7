package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/soulbeats/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-s", "-k", "-redis", "-lock-ttl",
	"-spotify-client-id", "-spotify-client-secret", "-spotify-token-url", "-spotify-api-url", "-spotify-timeout",
	"-rate-limit", "-rate-burst", "-log-level", "-log-format",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string                      HTTP bind address (e.g., ":8080")
//	-d string                      PostgreSQL DSN
//	-s string                      JWT HMAC secret key
//	-k string                      token encryption passphrase
//	-redis string                  Redis address for the refresh lock
//	-lock-ttl duration             refresh lock TTL
//	-spotify-client-id string
//	-spotify-client-secret string
//	-spotify-token-url string
//	-spotify-api-url string
//	-spotify-timeout duration
//	-rate-limit float              requests per second per caller
//	-rate-burst int
//	-log-level string
//	-log-format string
//
// args are first filtered with flagx.FilterArgs so flags owned by other
// components (-c) do not break parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TokenEncryptionKey, "k", config.TokenEncryptionKey, "token encryption passphrase")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address for refresh locks")
	fs.DurationVar(&config.RefreshLockTTL, "lock-ttl", config.RefreshLockTTL, "refresh lock ttl")
	fs.StringVar(&config.SpotifyClientID, "spotify-client-id", config.SpotifyClientID, "spotify client id")
	fs.StringVar(&config.SpotifyClientSecret, "spotify-client-secret", config.SpotifyClientSecret, "spotify client secret")
	fs.StringVar(&config.SpotifyTokenURL, "spotify-token-url", config.SpotifyTokenURL, "spotify token endpoint")
	fs.StringVar(&config.SpotifyAPIBaseURL, "spotify-api-url", config.SpotifyAPIBaseURL, "spotify web api base url")
	fs.DurationVar(&config.SpotifyTimeout, "spotify-timeout", config.SpotifyTimeout, "spotify request timeout")
	fs.Float64Var(&config.RateLimit, "rate-limit", config.RateLimit, "requests per second per caller")
	fs.IntVar(&config.RateBurst, "rate-burst", config.RateBurst, "rate limit burst")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json or text")

	return fs.Parse(args)
}
