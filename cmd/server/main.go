package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kimchiscan/server/internal/config"
	"github.com/kimchiscan/server/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load environment config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: env.SlogLevel()})))
	slog.Info("server starting", "addr", env.Addr(), "environment", env.Environment)

	pool, err := store.ConnectDB(ctx, env.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	app, err := buildApp(ctx, pool, env)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer app.scheduler.Stop()

	return app.server.Run(ctx, env.Addr())
}
