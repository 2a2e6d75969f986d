package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds all environment-based configuration.
// EXCHANGE_RATE_API_KEY is not required: the FX secondary source validates it
// at fetch time, and the Naver primary needs no key at all.
type Env struct {
	DatabaseURL        string `env:"DATABASE_URL,required,notEmpty"`
	Environment        string `env:"ENVIRONMENT"`
	ExchangeRateAPIKey string `env:"EXCHANGE_RATE_API_KEY"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	ServerHost         string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort         int    `env:"SERVER_PORT" envDefault:"8080"`
}

// LoadEnv layers an optional .env.<ENVIRONMENT> file (then .env) under the
// process environment and parses. Real environment variables win over file
// values because godotenv never overwrites existing keys.
func LoadEnv() (Env, error) {
	if name := os.Getenv("ENVIRONMENT"); name != "" {
		_ = godotenv.Load(".env." + name)
	}
	_ = godotenv.Load()

	return env.ParseAs[Env]()
}

// Addr returns the host:port listen address.
func (e Env) Addr() string {
	return fmt.Sprintf("%s:%d", e.ServerHost, e.ServerPort)
}

// SlogLevel maps the configured level name, defaulting to info.
func (e Env) SlogLevel() slog.Level {
	switch strings.ToLower(e.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
