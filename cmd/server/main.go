package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/auth"
	"github.com/blaemedia/alx-project-nexus/internal/cache"
	"github.com/blaemedia/alx-project-nexus/internal/cart"
	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/config"
	"github.com/blaemedia/alx-project-nexus/internal/events"
	"github.com/blaemedia/alx-project-nexus/internal/handlers"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/blaemedia/alx-project-nexus/internal/store"
	"github.com/blaemedia/alx-project-nexus/internal/thumbs"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

func main() {
	envErr := config.LoadEnvFile()
	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Sync()
	if envErr != nil {
		logger.Log.Warn("Failed to read .env file", zap.Error(envErr))
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 2. Session vault
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		logger.Log.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 3. Session Setup
	sessionStore := session.NewCookieStore(cfg.SessionKey, cfg.CookieSecure, cfg.CookieDomain, cfg.SessionTTL)
	manager := session.NewManager(sessionStore, db, cfg.SessionTTL)

	// 4. Backend client and services
	client := api.New(api.Options{
		BaseURL:         cfg.BackendURL,
		Timeout:         cfg.RequestTimeout,
		Retries:         cfg.RequestRetries,
		RetryWait:       cfg.RetryWait,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	})
	display := catalog.NewDisplay(client.BaseURL(), cfg.FallbackImage, cfg.CurrencySymbol)

	fetcherOpts := []catalog.Option{catalog.WithPageSize(cfg.PageSize), catalog.WithTimeout(cfg.CallBudget())}
	thumbService := thumbs.NewService(display, cfg.RequestTimeout)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewFromURL(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Log.Warn("Redis unavailable, running without catalog cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			fetcherOpts = append(fetcherOpts, catalog.WithCache(redisCache, cfg.CatalogCacheTTL))
			thumbService.WithCache(redisCache, 24*time.Hour)
			logger.Log.Info("Catalog cache enabled", zap.Duration("ttl", cfg.CatalogCacheTTL))
		}
	}
	fetcher := catalog.NewFetcher(client, display, fetcherOpts...)

	broker := events.NewBroker(8)
	authService := auth.NewService(client)

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	templates.AddDisplayFuncs(display)
	if err := templates.Load(os.DirFS(cfg.TemplateDir)); err != nil {
		logger.Log.Fatal("Failed to load templates", zap.Error(err))
	}

	// 6. Setup Handlers
	pages := &handlers.Pages{Templates: templates, Sessions: manager}

	baseCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	router := &handlers.Router{
		Home: &handlers.HomeHandler{Pages: pages, Catalog: fetcher},
		Cart: &handlers.CartHandler{
			Pages:      pages,
			Reconciler: cart.NewReconciler(client, broker),
			Aggregator: cart.NewAggregator(client, fetcher, display, broker),
			Badge:      cart.ParseBadgePolicy(cfg.BadgeErrors),
		},
		Auth:   &handlers.AuthHandler{Pages: pages, Auth: authService},
		Events: &handlers.EventsHandler{Broker: broker},
		Thumbs: &handlers.ThumbHandler{Thumbs: thumbService},
		Health: func(w http.ResponseWriter, r *http.Request) {
			if err := db.DB.PingContext(r.Context()); err != nil {
				logger.Error(r.Context(), "Health check failed", err)
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		},
		Static:  os.DirFS(cfg.StaticDir),
		Session: handlers.LoadSession(manager, authService),
		CSRF: csrf.Protect(
			cfg.CSRFKey,
			csrf.Secure(cfg.CookieSecure),
			csrf.Path("/"),
			csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
		),
		Limiter:        handlers.NewRateLimiter(baseCtx, cfg.RateLimitPerMinute),
		RequestTimeout: cfg.RequestTimeout + 5*time.Second,
		ImageOrigins:   []string{client.BaseURL()},
	}

	handler := router.Handler()
	if !cfg.CookieSecure {
		// Plain HTTP in development: tell the CSRF origin check not to expect TLS.
		next := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}

	go pruneSessions(baseCtx, db, time.Hour)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Log.Info("Server starting", zap.String("port", cfg.Port), zap.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed to listen and serve", zap.Error(err))
		}
	}()

	<-stop

	logger.Log.Info("Shutting down server gracefully...")

	// Ends open event streams so Shutdown does not wait on them.
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
		return
	}

	logger.Log.Info("Server exited gracefully.")
}

// pruneSessions deletes expired vault rows every interval until ctx ends.
func pruneSessions(ctx context.Context, db *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := db.PruneSessions(ctx, now)
			if err != nil {
				logger.Log.Warn("Failed to prune sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("Pruned expired sessions", zap.Int64("count", n))
			}
		}
	}
}
