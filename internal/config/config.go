// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/parking-reservation/internal/database"
	"github.com/iliyamo/parking-reservation/internal/logger"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // APP_ENV (dev, test, prod)
	Port      string // APP_PORT
	LogLevel  string // LOG_LEVEL
	LogFormat string // LOG_FORMAT (json | text)

	DBUser string // DB_USER
	DBPass string // DB_PASS (may be empty)
	DBHost string // DB_HOST
	DBPort string // DB_PORT
	DBName string // DB_NAME

	AutoMigrate bool // DB_AUTO_MIGRATE, apply migrations when serving

	JWTSecret      string // JWT_SECRET
	AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int    // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int    // BCRYPT_COST

	AMQPURL       string // AMQP_URL; events are dropped when empty
	AuditLogDir   string // AUDIT_LOG_DIR, where the event consumer writes parking.log
	StatsEnabled  bool   // STATS_ENABLED
	StatsCron     string // STATS_CRON
	ShutdownGrace time.Duration

	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding variables already set.  Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration.  Every missing or malformed required
// variable is reported in the returned error.
func Load() (Config, error) {
	var l loader
	cfg := Config{
		Env:       l.must("APP_ENV"),
		Port:      l.must("APP_PORT"),
		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "json"),

		DBUser: l.must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: l.must("DB_HOST"),
		DBPort: l.must("DB_PORT"),
		DBName: l.must("DB_NAME"),

		AutoMigrate: envBool("DB_AUTO_MIGRATE", false),

		JWTSecret:      l.must("JWT_SECRET"),
		AccessTTLMin:   l.mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: l.mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		AMQPURL:       os.Getenv("AMQP_URL"),
		AuditLogDir:   envStr("AUDIT_LOG_DIR", "logs"),
		StatsEnabled:  envBool("STATS_ENABLED", true),
		StatsCron:     envStr("STATS_CRON", "5 0 * * *"),
		ShutdownGrace: envDur("SHUTDOWN_GRACE", 10*time.Second),

		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
	}
	return cfg, l.err()
}

// Database returns the MySQL connection options.
func (c Config) Database() database.Options {
	return database.Options{
		User: c.DBUser,
		Pass: c.DBPass,
		Host: c.DBHost,
		Port: c.DBPort,
		Name: c.DBName,
	}
}

// Auth returns the token and password hashing settings.
func (c Config) Auth() service.AuthConfig {
	return service.AuthConfig{
		JWTSecret:      c.JWTSecret,
		AccessTTLMin:   c.AccessTTLMin,
		RefreshTTLDays: c.RefreshTTLDays,
		BcryptCost:     c.BcryptCost,
	}
}

// Logger returns the logging options.
func (c Config) Logger() logger.Options {
	return logger.Options{Level: c.LogLevel, Format: c.LogFormat}
}

// loader collects required-variable failures instead of exiting on the
// first one.
type loader struct {
	missing []string
	invalid []string
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.missing = append(l.missing, key)
	}
	return v
}

// mustInt is like must but converts the value to an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q", key, s))
	}
	return n
}

func (l *loader) err() error {
	var errs []error
	if len(l.missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required env vars: %s", strings.Join(l.missing, ", ")))
	}
	if len(l.invalid) > 0 {
		errs = append(errs, fmt.Errorf("invalid int env vars: %s", strings.Join(l.invalid, ", ")))
	}
	return errors.Join(errs...)
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
