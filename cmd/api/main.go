package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-gateway/internal/backend"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/directory"
	"storefront-gateway/internal/httpserver"
	"storefront-gateway/internal/listing"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	client := backend.NewHTTPClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
	dir := directory.New(client.ListCategories, cfg.PreloadTimeout, logger)
	executor := listing.NewExecutor(client, logger)
	querier := listing.NewQuerier(executor, cfg.DebounceWindow)
	assembler := listing.NewAssembler(dir, executor, querier, cfg.PublicBaseURL, logger)

	// Warm the slug cache; a failure here is not fatal, lookups fall back
	// to per-request fetches.
	if err := dir.Preload(context.Background()); err != nil {
		logger.Warn("category preload failed at startup", zap.Error(err))
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Backend:   client,
		Directory: dir,
		Assembler: assembler,
		Querier:   querier,
		BaseURL:   cfg.PublicBaseURL,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
