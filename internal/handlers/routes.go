package handlers

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires every storefront route.
type Router struct {
	Home   *HomeHandler
	Cart   *CartHandler
	Auth   *AuthHandler
	Events *EventsHandler
	Thumbs *ThumbHandler
	Health http.HandlerFunc
	Static fs.FS

	// Session and CSRF are optional middleware; nil skips them.
	Session func(http.Handler) http.Handler
	CSRF    func(http.Handler) http.Handler

	Limiter        *RateLimiter
	RequestTimeout time.Duration
	ImageOrigins   []string
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders(rt.ImageOrigins...))

	r.Get("/healthz", rt.health)
	if rt.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(rt.Static))))
	}

	r.Group(func(r chi.Router) {
		if rt.CSRF != nil {
			r.Use(rt.CSRF)
		}
		if rt.Session != nil {
			r.Use(rt.Session)
		}

		// Long-lived stream; no request timeout.
		r.Get("/events/cart", rt.Events.Cart)

		r.Group(func(r chi.Router) {
			if rt.RequestTimeout > 0 {
				r.Use(middleware.Timeout(rt.RequestTimeout))
			}

			r.Get("/", rt.Home.Index)
			r.Get("/shop", rt.Home.Shop)
			r.Get("/products/{id}", rt.Home.Product)
			if rt.Thumbs != nil {
				r.Get("/thumb", rt.Thumbs.Serve)
			}

			r.Get("/cart", rt.Cart.View)
			r.Get("/cart/count", rt.Cart.Count)

			r.Get("/signin", rt.Auth.SignInForm)
			r.Get("/signup", rt.Auth.SignUpForm)
			r.Get("/forgot-password", rt.Auth.ForgotPasswordForm)
			r.Get("/reset-password", rt.Auth.ResetPasswordForm)
			r.Get("/account", rt.Auth.Account)
			r.Post("/logout", rt.Auth.Logout)

			r.Group(func(r chi.Router) {
				if rt.Limiter != nil {
					r.Use(rt.Limiter.Middleware)
				}
				r.Post("/cart/add", rt.Cart.Add)
				r.Post("/cart/update", rt.Cart.Update)
				r.Post("/cart/remove", rt.Cart.Remove)
				r.Post("/cart/clear", rt.Cart.Clear)

				r.Post("/signin", rt.Auth.SignIn)
				r.Post("/signup", rt.Auth.SignUp)
				r.Post("/forgot-password", rt.Auth.ForgotPassword)
				r.Post("/reset-password", rt.Auth.ResetPassword)
			})
		})
	})

	return r
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.Health != nil {
		rt.Health(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
