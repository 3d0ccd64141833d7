// Package server initializes and runs the SoulBeats API server.
// It opens the database, applies migrations, wires the Spotify broker,
// the optional refresh lock and the services, and serves HTTP until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/soulbeats/internal/cryptox"
	"github.com/dmitrijs2005/soulbeats/internal/dbx"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/dmitrijs2005/soulbeats/internal/server/config"
	"github.com/dmitrijs2005/soulbeats/internal/server/httpapi"
	"github.com/dmitrijs2005/soulbeats/internal/server/locks"
	"github.com/dmitrijs2005/soulbeats/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soulbeats/internal/server/services"
	"github.com/dmitrijs2005/soulbeats/internal/server/spotify"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	locker *locks.RedisLocker
	http   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	sealer, err := cryptox.NewSealer(c.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(sealer)
	if err != nil {
		return nil, fmt.Errorf("repository manager: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	broker, err := spotify.NewClient(spotify.Config{
		ClientID:     c.SpotifyClientID,
		ClientSecret: c.SpotifyClientSecret,
		TokenURL:     c.SpotifyTokenURL,
		APIBaseURL:   c.SpotifyAPIBaseURL,
		Timeout:      c.SpotifyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	locker, err := newRefreshLocker(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	gw := dbx.NewGateway(db, logger)

	var opts []services.SpotifyOption
	if locker != nil {
		opts = append(opts, services.WithRefreshLocker(locker))
	}

	srv := httpapi.NewServer(c.HTTPAddr, logger, httpapi.Deps{
		Spotify:     services.NewSpotifyService(gw, rm, broker, logger, opts...),
		Preferences: services.NewPreferenceService(gw, rm, logger),
		Catalog:     services.NewCatalogService(gw, rm),
		Users:       services.NewUserService(gw, rm, logger),
		DB:          gw,
		Limiter:     httpapi.NewRateLimiter(c.RateLimit, c.RateBurst),
	}, c.SecretKey)

	return &App{config: c, logger: logger, db: db, locker: locker, http: srv}, nil
}

// newRefreshLocker returns nil when no Redis address is configured; refreshes
// then run without cross-process coordination.
func newRefreshLocker(ctx context.Context, c *config.Config, logger logging.Logger) (*locks.RedisLocker, error) {
	if c.RedisAddr == "" {
		logger.Info(ctx, "refresh lock disabled, no redis address configured")
		return nil, nil
	}
	l, err := locks.Dial(ctx, c.RedisAddr, c.RefreshLockTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh lock: %w", err)
	}
	return l, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the database and the Redis client.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.http.Run(gctx)
	})

	err := g.Wait()
	app.close(context.WithoutCancel(ctx))
	return err
}

func (app *App) close(ctx context.Context) {
	if app.locker != nil {
		if err := app.locker.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
