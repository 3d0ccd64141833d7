package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/logging"
	"github.com/gorilla/mux"
)

const (
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

type Server struct {
	address     string
	spotify     SpotifyService
	preferences PreferenceService
	catalog     CatalogService
	users       UserService
	db          Pinger
	limiter     *RateLimiter
	logger      logging.Logger
	jwtSecret   []byte
}

type Deps struct {
	Spotify     SpotifyService
	Preferences PreferenceService
	Catalog     CatalogService
	Users       UserService
	DB          Pinger
	Limiter     *RateLimiter
}

func NewServer(address string, l logging.Logger, d Deps, secretKey string) *Server {
	if l == nil {
		l = logging.Nop()
	}
	return &Server{
		address:     address,
		spotify:     d.Spotify,
		preferences: d.Preferences,
		catalog:     d.Catalog,
		users:       d.Users,
		db:          d.DB,
		limiter:     d.Limiter,
		logger:      l.With("module", "http_server"),
		jwtSecret:   []byte(secretKey),
	}
}

// Handler builds the router with all middleware attached.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, common.Outcome{Description: common.CodeNotFound, Message: "Route not found"})
	})
	r.Use(s.requestIDMiddleware, s.loggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authMiddleware, s.rateLimitMiddleware)

	api.HandleFunc("/spotify/token", s.handleExchange).Methods(http.MethodPost)
	api.HandleFunc("/spotify/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/spotify/playlists", s.handlePlaylists).Methods(http.MethodGet)
	api.HandleFunc("/spotify", s.handleDisconnect).Methods(http.MethodDelete)

	api.HandleFunc("/preferences", s.handleGetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/preferences/genres", s.handleUpdateGenres).Methods(http.MethodPut)
	api.HandleFunc("/preferences/artists", s.handleUpdateArtists).Methods(http.MethodPut)

	api.HandleFunc("/catalog/genres", s.handleGenres).Methods(http.MethodGet)
	api.HandleFunc("/catalog/genres/{id:[0-9]+}/artists", s.handleArtists).Methods(http.MethodGet)

	api.HandleFunc("/users/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/info", s.handleUserInfo).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/profile", s.handleUpdateProfile).Methods(http.MethodPut)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
