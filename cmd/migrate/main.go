package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kimchiscan/server/internal/config"
	"github.com/kimchiscan/server/internal/store"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")
}

func run(ctx context.Context) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load environment config: %w", err)
	}

	pool, err := store.ConnectDB(ctx, env.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return store.RunMigrations(ctx, pool)
}
