package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/msomdec/taskboard/internal/handler"
	"github.com/msomdec/taskboard/internal/repository/sqlite"
	"github.com/msomdec/taskboard/internal/service"
)

type config struct {
	port          string
	dbPath        string
	jwtSecret     string
	bcryptCost    int
	authRatePerS  float64
	authRateBurst float64
}

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(db.Users(), cfg.jwtSecret, cfg.bcryptCost)
	taskService := service.NewTaskService(db.Tasks())
	limiter := service.NewTokenBucket(cfg.authRatePerS, cfg.authRateBurst)
	defer limiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, taskService, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		port:      envOrDefault(getenv, "PORT", "8080"),
		dbPath:    envOrDefault(getenv, "DATABASE_PATH", "taskboard.db"),
		jwtSecret: getenv("JWT_SECRET"),
	}
	if cfg.jwtSecret == "" {
		return config{}, errors.New("JWT_SECRET environment variable is required")
	}
	if len(cfg.jwtSecret) < 32 {
		return config{}, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}

	var err error
	if cfg.bcryptCost, err = strconv.Atoi(envOrDefault(getenv, "BCRYPT_COST", "12")); err != nil {
		return config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.bcryptCost < 4 || cfg.bcryptCost > 14 {
		return config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.bcryptCost)
	}

	if cfg.authRatePerS, err = strconv.ParseFloat(envOrDefault(getenv, "AUTH_RATE_PER_SEC", "1"), 64); err != nil || cfg.authRatePerS <= 0 {
		return config{}, errors.New("AUTH_RATE_PER_SEC must be a positive number")
	}
	if cfg.authRateBurst, err = strconv.ParseFloat(envOrDefault(getenv, "AUTH_RATE_BURST", "5"), 64); err != nil || cfg.authRateBurst < 1 {
		return config{}, errors.New("AUTH_RATE_BURST must be at least 1")
	}
	return cfg, nil
}

func envOrDefault(getenv func(string) string, key, defaultVal string) string {
	if val := getenv(key); val != "" {
		return val
	}
	return defaultVal
}
