package config

import (
	"log/slog"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads, so tests see defaults rather
// than whatever the developer's shell happens to export.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_PATH", "BASE_URL", "JWT_SECRET", "TOKEN_TTL_MINUTES",
		"BCRYPT_COST", "SHORT_CODE_LENGTH", "DEBUG", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.ShortCodeLength != 8 {
		t.Errorf("ShortCodeLength = %d, want 8", cfg.ShortCodeLength)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("BASE_URL", "https://sho.rt")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("TOKEN_TTL_MINUTES", "5")
	t.Setenv("SHORT_CODE_LENGTH", "10")
	t.Setenv("DEBUG", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Port)
	}
	if cfg.DBPath != ":memory:" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.BaseURL != "https://sho.rt" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.TokenTTL != 5*time.Minute {
		t.Errorf("TokenTTL = %v, want 5m", cfg.TokenTTL)
	}
	if cfg.ShortCodeLength != 10 {
		t.Errorf("ShortCodeLength = %d, want 10", cfg.ShortCodeLength)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "eighty"},
		{"zero token TTL", "TOKEN_TTL_MINUTES", "0"},
		{"negative token TTL", "TOKEN_TTL_MINUTES", "-5"},
		{"code length too short", "SHORT_CODE_LENGTH", "3"},
		{"code length too long", "SHORT_CODE_LENGTH", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
