package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/server/auth"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey string

const requestIDKey ctxKey = "requestID"

// RequestIDFrom returns the id assigned to the request by the request id middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info(r.Context(), "request",
			"request_id", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// authMiddleware rejects requests without a valid bearer token. Rejections
// draw from the client address's rate budget, so forged tokens are throttled
// before any owner is known.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.rejectUnauthenticated(w, r, common.ErrorUnauthorized)
			return
		}

		id, err := auth.ParseIdentity(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			s.rejectUnauthenticated(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func (s *Server) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	if !s.limiter.Allow(addrKey(r)) {
		writeRateLimited(w)
		return
	}
	s.writeError(w, r, err)
}

// addrKey keys a limiter by client host. Prefixed so it never collides with an owner id.
func addrKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func writeRateLimited(w http.ResponseWriter) {
	writeJSON(w, http.StatusTooManyRequests, common.Outcome{
		Description: "RATE_LIMITED",
		Message:     "Too many requests, slow down",
	})
}

// RateLimiter throttles each caller separately. A nil limiter lets everything through.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	mu      sync.Mutex
	callers map[string]*callerLimiter
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when perSecond is not positive.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		callers: make(map[string]*callerLimiter),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil {
		return true
	}
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if c, ok := rl.callers[key]; ok {
		c.lastSeen = now
		return c.limiter
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.callers[key] = &callerLimiter{limiter: l, lastSeen: now}
	rl.evictLocked(now)
	return l
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for key, c := range rl.callers {
		if now.Sub(c.lastSeen) > rl.idle {
			delete(rl.callers, key)
		}
	}
}

// rateLimitMiddleware runs after authentication, so callers are keyed by owner.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := addrKey(r)
		if id, ok := auth.IdentityFrom(r.Context()); ok {
			key = id.OwnerID
		}
		if !s.limiter.Allow(key) {
			writeRateLimited(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
