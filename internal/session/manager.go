package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	CookieName = "blaemart-session"
	keyID      = "sid"
)

// Vault keeps token pairs server side, keyed by session id.
type Vault interface {
	SaveSession(ctx context.Context, rec store.SessionRecord) error
	GetSession(ctx context.Context, id string) (*store.SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
}

// NewCookieStore returns the signed cookie store for the session cookie.
// secure marks the cookie HTTPS-only; domain may be empty.
func NewCookieStore(key []byte, secure bool, domain string, ttl time.Duration) *sessions.CookieStore {
	cs := sessions.NewCookieStore(key)
	cs.Options.HttpOnly = true
	cs.Options.Secure = secure
	cs.Options.SameSite = http.SameSiteLaxMode
	cs.Options.Path = "/"
	cs.Options.MaxAge = int(ttl.Seconds())
	if domain != "" {
		cs.Options.Domain = domain
	}
	return cs
}

// Manager ties the browser cookie, which only carries the session id and
// flashes, to the token pair held in the vault.
type Manager struct {
	cookies sessions.Store
	vault   Vault
	ttl     time.Duration
}

func NewManager(cookies sessions.Store, vault Vault, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{cookies: cookies, vault: vault, ttl: ttl}
}

// Cookie returns the request's cookie session. A cookie that no longer
// decodes, for example after a key rotation, yields a fresh session.
func (m *Manager) Cookie(r *http.Request) *sessions.Session {
	s, err := m.cookies.Get(r, CookieName)
	if err != nil {
		logger.Debug(r.Context(), "Discarding unreadable session cookie", zap.Error(err))
	}
	return s
}

// Load resolves the caller's Session. Visitors without a stored token pair
// get an empty, unauthenticated Session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	id, _ := m.Cookie(r).Values[keyID].(string)
	if id == "" {
		return &Session{}, nil
	}

	rec, err := m.vault.GetSession(r.Context(), id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return &Session{}, nil
	}
	if err != nil {
		return &Session{}, fmt.Errorf("load session: %w", err)
	}

	return &Session{
		ID:        rec.ID,
		Tokens:    models.TokenPair{Access: rec.AccessToken, Refresh: rec.RefreshToken},
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Login stores tokens under a fresh session id and points the cookie at it.
// Any previous id is dropped.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, tokens models.TokenPair) (*Session, error) {
	c := m.Cookie(r)
	if old, _ := c.Values[keyID].(string); old != "" {
		if err := m.vault.DeleteSession(r.Context(), old); err != nil {
			logger.Warn(r.Context(), "Failed to drop previous session", zap.Error(err))
		}
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Tokens:    tokens,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.Update(r.Context(), sess); err != nil {
		return nil, err
	}

	c.Values[keyID] = sess.ID
	if err := c.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session cookie: %w", err)
	}
	return sess, nil
}

// Update persists the session's current tokens, e.g. after a refresh.
func (m *Manager) Update(ctx context.Context, sess *Session) error {
	err := m.vault.SaveSession(ctx, store.SessionRecord{
		ID:           sess.ID,
		AccessToken:  sess.Tokens.Access,
		RefreshToken: sess.Tokens.Refresh,
		ExpiresAt:    sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Purge forgets the token pair on both sides and leaves sess unauthenticated.
// Flashes in the cookie survive.
func (m *Manager) Purge(w http.ResponseWriter, r *http.Request, sess *Session) error {
	c := m.Cookie(r)
	id, _ := c.Values[keyID].(string)
	if sess != nil && sess.ID != "" {
		id = sess.ID
	}
	if id != "" {
		if err := m.vault.DeleteSession(r.Context(), id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	if sess != nil {
		*sess = Session{}
	}
	delete(c.Values, keyID)
	return c.Save(r, w)
}
