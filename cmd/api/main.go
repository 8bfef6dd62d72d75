package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worthit/internal/api"
	"worthit/internal/config"
	"worthit/internal/lib/hash"
	"worthit/internal/lib/jwt"
	"worthit/internal/service"
	"worthit/internal/storage/postgres"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting application",
		slog.String("env", cfg.Env),
		slog.String("host", cfg.ApiHost),
		slog.Int("port", cfg.ApiPort),
	)

	dbUrl := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Postgres.User,
		cfg.Postgres.Pass,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Db,
	)

	storage, err := postgres.New(dbUrl)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	tokens := jwt.NewManager([]byte(cfg.JwtSecret), cfg.TokenTTL)
	hasher := hash.NewBcryptHasher()

	authService := service.NewAuth(log, storage, hasher, tokens)
	ledgerService := service.NewLedger(log, storage, storage)

	apiServer := api.New(cfg, log, authService, ledgerService, tokens)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		apiServer.MustStart()
	}()

	<-sigChan
	log.Info("got signal to shutdown server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Stop(ctx); err != nil {
		log.Error("stopping server error", "error", err)
	}

	if err := storage.Stop(); err != nil {
		log.Error("closing storage error", "error", err)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}
