package handlers

import (
	"context"
	"encoding/gob"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const msgSessionExpired = "Session expired. Please login again."

// Register types for gob encoding (used by sessions)
func init() {
	gob.Register(FlashMessage{})
}

// SecurityHeaders adds standard security headers. Product images are served
// by the backend, so its origin is allowed as an image source.
func SecurityHeaders(imageOrigins ...string) func(http.Handler) http.Handler {
	imgSrc := strings.TrimSpace("'self' data: " + strings.Join(imageOrigins, " "))
	csp := "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src " + imgSrc + "; script-src 'self'; connect-src 'self'"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "same-origin")
			w.Header().Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives each client IP a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

// NewRateLimiter allows perMinute requests per IP with bursts of the same
// size. Idle visitors are forgotten by a background sweep that stops with ctx.
func NewRateLimiter(ctx context.Context, perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     3 * time.Minute,
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > rl.idle {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Middleware enforces the rate limit
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			logger.Warn(r.Context(), "Rate limit exceeded", zap.String("ip", ip))
			http.Error(w, "Too Many Requests. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FlashMessage structure
type FlashMessage struct {
	Type    string
	Message string
}

// GetFlash retrieves flash messages from the session
func GetFlash(session *sessions.Session) []FlashMessage {
	flashes := session.Flashes()
	var messages []FlashMessage
	for _, f := range flashes {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

type sessionKey struct{}

// CurrentSession returns the session loaded by LoadSession. It is never nil.
func CurrentSession(r *http.Request) *session.Session {
	if s, ok := r.Context().Value(sessionKey{}).(*session.Session); ok {
		return s
	}
	return &session.Session{}
}

// Refresher renews access tokens that are about to expire.
type Refresher interface {
	Refresh(ctx context.Context, sess *session.Session) (bool, error)
}

// LoadSession resolves the caller's session and refreshes its access token
// ahead of expiry. A rejected refresh signs the visitor out with a flash.
func LoadSession(m *session.Manager, refresher Refresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Load(r)
			if err != nil {
				logger.Error(r.Context(), "Failed to load session", err)
			}

			if sess.Authenticated() && refresher != nil {
				changed, err := refresher.Refresh(r.Context(), sess)
				switch {
				case errors.Is(err, api.ErrUnauthorized):
					logger.Info(r.Context(), "Refresh token rejected, signing out")
					m.Cookie(r).AddFlash(FlashMessage{Type: "error", Message: msgSessionExpired})
					if err := m.Purge(w, r, sess); err != nil {
						logger.Error(r.Context(), "Failed to purge session", err)
					}
				case err != nil:
					logger.Warn(r.Context(), "Token refresh failed", zap.Error(err))
				case changed:
					if err := m.Update(r.Context(), sess); err != nil {
						logger.Error(r.Context(), "Failed to store refreshed tokens", err)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
		})
	}
}
