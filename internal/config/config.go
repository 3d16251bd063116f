package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultJWTSecret is the development signing key. Validate refuses it in production.
const DefaultJWTSecret = "replace-this-secret"

// App holds the runtime configuration loaded from environment variables.
// It is built once at startup and passed by value; nothing mutates it afterwards.
type App struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string
	AutoMigrate bool
	RedisAddr   string

	JWTSecretKey string
	JWTIssuer    string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	DevMode      bool
	CSRFProtect  bool

	FrontendOrigin   string
	QueueBackend     string
	RateLimitPerMin  int
	LoginLimitPerMin int
	PasswordScheme   string

	PruneSchedule string
	PruneGrace    time.Duration
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", getEnv("PORT", "8080")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: databaseURL(),
		AutoMigrate: boolEnv("AUTO_MIGRATE", true),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTIssuer:    getEnv("JWT_ISSUER", "college-portal"),
		AccessTTL:    time.Duration(intEnv("JWT_ACCESS_MINUTES", 15)) * time.Minute,
		RefreshTTL:   time.Duration(intEnv("JWT_REFRESH_DAYS", 7)) * 24 * time.Hour,
		DevMode:      boolEnv("DEV_ENV", false),
		CSRFProtect:  boolEnv("JWT_COOKIE_CSRF_PROTECT", true),

		FrontendOrigin:   getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		QueueBackend:     getEnv("QUEUE_BACKEND", "redis"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		LoginLimitPerMin: intEnv("LOGIN_LIMIT_PER_MIN", 10),
		PasswordScheme:   getEnv("PASSWORD_SCHEME", "plain"),

		PruneSchedule: getEnv("LEDGER_PRUNE_SCHEDULE", ""),
		PruneGrace:    durationEnv("LEDGER_PRUNE_GRACE", 24*time.Hour),
	}
}

// Production reports whether the app runs with release settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Validate rejects settings that are unsafe to serve with.
func (a App) Validate() error {
	if a.Production() && a.JWTSecretKey == DefaultJWTSecret {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}
	if a.AccessTTL <= 0 || a.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the DB_* parts.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "college"), getEnv("DB_PASSWORD", "college")),
		Host:     fmt.Sprintf("%s:%s", getEnv("DB_HOST", "127.0.0.1"), getEnv("DB_PORT", "5432")),
		Path:     "/" + getEnv("DB_NAME", "college_db"),
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Warnf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
		log.Warnf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
		log.Warnf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
