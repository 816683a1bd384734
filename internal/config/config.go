package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env          string
	Port         string
	DBPath       string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool
	SessionTTL   time.Duration

	BackendURL      string
	RequestTimeout  time.Duration
	RequestRetries  int
	RetryWait       time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	RedisURL        string
	CatalogCacheTTL time.Duration

	CurrencySymbol string
	PageSize       int
	FallbackImage  string
	BadgeErrors    string

	TemplateDir        string
	StaticDir          string
	RateLimitPerMinute int
}

// LoadEnvFile merges a .env file from the working directory into the
// environment. Variables already set are kept. A missing file is not an error.
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LoadConfig reads the environment, after merging a .env file when one exists.
func LoadConfig() (*Config, error) {
	if err := LoadEnvFile(); err != nil {
		logger.Log.Warn("Failed to read .env file", zap.Error(err))
	}

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8585"),
		DBPath:       getEnv("DB_PATH", "./storefront.db"),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		SessionTTL:   getDuration("SESSION_TTL", 7*24*time.Hour),

		BackendURL:      strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:8000"), "/"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RequestRetries:  getInt("REQUEST_RETRIES", 1),
		RetryWait:       getDuration("RETRY_WAIT", 300*time.Millisecond),
		BreakerFailures: uint32(getPositiveInt("BREAKER_FAILURES", 5)),
		BreakerTimeout:  getDuration("BREAKER_TIMEOUT", 30*time.Second),

		RedisURL:        getEnv("REDIS_URL", ""),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", time.Minute),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₦"),
		PageSize:       getInt("PAGE_SIZE", 12),
		FallbackImage:  getEnv("FALLBACK_IMAGE", "/static/images/placeholder.svg"),
		BadgeErrors:    getEnv("CART_BADGE_ERRORS", "silent"),

		TemplateDir:        getEnv("TEMPLATE_DIR", "templates"),
		StaticDir:          getEnv("STATIC_DIR", "static"),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		logger.Log.Error("Invalid PORT environment variable. Falling back to default.", zap.String("PORT", cfg.Port))
		cfg.Port = "8585"
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 12
	}
	if cfg.RequestRetries < 0 {
		cfg.RequestRetries = 0
	}

	return cfg, nil
}

// CallBudget is the longest one backend read can take, retries included.
func (c *Config) CallBudget() time.Duration {
	return c.RequestTimeout*time.Duration(c.RequestRetries+1) + c.RetryWait*time.Duration(c.RequestRetries)
}

// loadKey decodes a base64 key of at least 32 bytes, or generates a throwaway one.
func loadKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		logger.Log.Warn(name + " not set. Generating a random key for development; it changes on every restart. SET IT IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		logger.Log.Warn(name + " is invalid or shorter than 32 bytes. Generating a random key for development. SET A SECURE KEY IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Log.Warn("Invalid integer, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return n
}

// getPositiveInt is getInt with values below 1 replaced by the default.
func getPositiveInt(key string, defaultValue int) int {
	n := getInt(key, defaultValue)
	if n < 1 {
		logger.Log.Warn("Value must be at least 1, using default", zap.String("key", key), zap.Int("value", n))
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		logger.Log.Warn("Invalid duration, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return d
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		logger.Log.Error("Failed to read random bytes", zap.Error(err))
		fallback := []byte("fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10))
		padded := make([]byte, n)
		copy(padded, fallback)
		return padded
	}
	return b
}
