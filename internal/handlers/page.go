package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/gorilla/csrf"
)

// Pages is shared by every handler that renders HTML.
type Pages struct {
	Templates *TemplateCache
	Sessions  *session.Manager
}

// render adds the layout data (flashes, CSRF field, sign-in state) and writes
// the page. Reading the flashes consumes them, so the cookie is saved first.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	c := p.Sessions.Cookie(r)
	data["Flashes"] = GetFlash(c)
	data["CsrfField"] = csrf.TemplateField(r)
	data["SignedIn"] = CurrentSession(r).Authenticated()
	data["Path"] = r.URL.Path
	data["Return"] = r.URL.RequestURI()
	if err := c.Save(r, w); err != nil {
		logger.Error(r.Context(), "Failed to save session cookie", err)
	}
	p.Templates.Render(w, r, status, name, data)
}

// redirect sends the visitor to target, optionally carrying a flash.
func (p *Pages) redirect(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	c := p.Sessions.Cookie(r)
	if msg != "" {
		c.AddFlash(FlashMessage{Type: kind, Message: msg})
	}
	if err := c.Save(r, w); err != nil {
		logger.Error(r.Context(), "Failed to save session cookie", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// expired drops the stored tokens and sends the visitor to sign in again.
func (p *Pages) expired(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if err := p.Sessions.Purge(w, r, sess); err != nil {
		logger.Error(r.Context(), "Failed to purge session", err)
	}
	p.redirect(w, r, "/signin", "error", msgSessionExpired)
}

// unauthorized reports whether err means the backend no longer accepts the
// session's token, and if so handles it.
func (p *Pages) unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	p.expired(w, r)
	return true
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.FormValue(key))
	if err != nil {
		return 0
	}
	return n
}
