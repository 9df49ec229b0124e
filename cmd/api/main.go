// Command api serves the books browsing session over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"books-search/internal/app"
	"books-search/internal/config"
	hhttp "books-search/internal/handler/http"
	"books-search/internal/handler/http/middleware"
	"books-search/internal/observability/logging"
	"books-search/internal/observability/tracing"
	pkgconfig "books-search/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	version := getVersion()

	shutdownTracing, err := tracing.Setup(ctx, "books-search-api", version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", slog.Any("error", err))
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close session", slog.Any("error", err))
		}
	}()

	edge, err := middleware.LoadConfigFromEnv(logger, pkgconfig.NewMetrics("http_edge"))
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(*edge, logger)
	go limiter.Run(ctx)
	logger.Info("edge middleware configured",
		slog.Any("cors_origins", edge.AllowedOrigins),
		slog.Float64("rate_limit", edge.RateLimit),
		slog.Int("rate_burst", edge.RateBurst),
		slog.Int("trusted_proxies", len(edge.TrustedProxies)))

	srv := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: hhttp.NewRouter(hhttp.RouterConfig{
			Session:     a.Session,
			Store:       a.Store,
			Images:      a.Loader,
			DB:          a.DB,
			Version:     version,
			Logger:      logger,
			CORSOrigins: edge.AllowedOrigins,
			Limiter:     limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.ListenAddr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
