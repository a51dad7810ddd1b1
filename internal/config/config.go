// Package config loads the process configuration exactly once, at startup.
//
// The original design goal: a single immutable Config struct built in main()
// and handed to every constructor that needs it. Nothing in this codebase
// reads environment variables after Load() returns, and no package keeps a
// mutable global settings object — if a component needs a knob, it receives
// it explicitly.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob for the service.
//
// Using a struct (instead of individual parameters) makes it easy to add
// options without changing function signatures, and keeps all defaults in
// one place.
type Config struct {
	Port   int    // HTTP listen port
	DBPath string // SQLite database file, ":memory:" for tests

	// BaseURL is the public origin short links are rendered against,
	// e.g. "http://localhost:8080". Short links are BaseURL + "/r/" + code.
	BaseURL string

	JWTSecret string        // HMAC signing secret, at least 16 chars
	TokenTTL  time.Duration // access-token lifetime

	BcryptCost      int // bcrypt work factor for new password hashes
	ShortCodeLength int // generated short-code length

	Debug    bool       // when true, error responses include internal details
	LogLevel slog.Level // minimum level for the process logger
}

// Load builds the Config from the environment, with a .env file as an
// optional source for local development.
//
// godotenv.Load is best-effort: a missing .env is normal in production,
// where everything arrives as real environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            8080,
		DBPath:          "data/url_shortener.db",
		BaseURL:         "http://localhost:8080",
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        30 * time.Minute,
		BcryptCost:      12,
		ShortCodeLength: 8,
		Debug:           false,
		LogLevel:        slog.LevelInfo,
	}

	var err error
	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return nil, err
	}
	cfg.DBPath = strEnv("DB_PATH", cfg.DBPath)
	cfg.BaseURL = strEnv("BASE_URL", cfg.BaseURL)

	ttlMinutes, err := intEnv("TOKEN_TTL_MINUTES", int(cfg.TokenTTL.Minutes()))
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL_MINUTES must be positive, got %d", ttlMinutes)
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", cfg.BcryptCost); err != nil {
		return nil, err
	}
	if cfg.ShortCodeLength, err = intEnv("SHORT_CODE_LENGTH", cfg.ShortCodeLength); err != nil {
		return nil, err
	}
	if cfg.ShortCodeLength < 6 || cfg.ShortCodeLength > 20 {
		return nil, fmt.Errorf("config: SHORT_CODE_LENGTH must be in [6, 20], got %d", cfg.ShortCodeLength)
	}

	cfg.Debug = boolEnv("DEBUG", cfg.Debug)
	cfg.LogLevel = levelEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func strEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func levelEnv(key string, fallback slog.Level) slog.Level {
	switch strEnv(key, "") {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "INFO", "info":
		return slog.LevelInfo
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return fallback
	}
}
