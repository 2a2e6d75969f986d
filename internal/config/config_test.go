package config

import (
	"log/slog"
	"testing"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/kimchiscan")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost:5432/kimchiscan" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ServerHost != "127.0.0.1" {
		t.Errorf("ServerHost = %q, want 127.0.0.1", cfg.ServerHost)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8080", cfg.Addr())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want info", cfg.SlogLevel())
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/kimchiscan")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EXCHANGE_RATE_API_KEY", "exim-key")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9090", cfg.Addr())
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.ExchangeRateAPIKey != "exim-key" {
		t.Errorf("ExchangeRateAPIKey = %q", cfg.ExchangeRateAPIKey)
	}
}

func TestLoadEnv_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL, got nil")
	}
}

func TestSlogLevel_UnknownFallsBackToInfo(t *testing.T) {
	cfg := Env{LogLevel: "loud"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want info", cfg.SlogLevel())
	}
}
