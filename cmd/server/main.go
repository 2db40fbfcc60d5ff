package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/config"
	"github.com/vanshika/moviegraph/internal/graph"
	"github.com/vanshika/moviegraph/internal/logging"
	"github.com/vanshika/moviegraph/internal/metrics"
	"github.com/vanshika/moviegraph/internal/repository"
	"github.com/vanshika/moviegraph/internal/server"
	"github.com/vanshika/moviegraph/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	repoOpts := []repository.Option{
		repository.WithLogger(logger.Named("repository")),
		repository.WithRatingPolicy(cfg.Repository.RatingPolicy),
	}

	var registry *prometheus.Registry
	if cfg.HTTP.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		repoOpts = append(repoOpts, repository.WithMetrics(metrics.New(registry)))
	}

	repo, err := repository.Connect(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}, repoOpts...)
	if err != nil {
		logger.Error("failed to connect to graph store", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.Warn("closing repository failed", zap.Error(err))
		}
	}()

	if err := prepareStore(ctx, repo, logger); err != nil {
		_ = logger.Sync()
		os.Exit(1)
	}

	catalog := service.NewCatalogService(repo, logger)
	deps := server.RouterDependencies{
		Health:           server.GraphHealthService{Store: repo},
		API:              server.NewAPIHandlers(logger.Named("api"), catalog),
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	}
	if registry != nil {
		deps.Metrics = registry
	}

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger.Named("http"), deps))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

type schemaStore interface {
	EnsureConstraints(ctx context.Context) error
	Close(ctx context.Context) error
}

// prepareStore declares the uniqueness constraints and closes the store if
// that fails.
func prepareStore(ctx context.Context, store schemaStore, logger *zap.Logger) error {
	if err := store.EnsureConstraints(ctx); err != nil {
		logger.Error("failed to ensure constraints", zap.Error(err))
		if cerr := store.Close(ctx); cerr != nil {
			logger.Warn("closing repository failed", zap.Error(cerr))
		}
		return err
	}
	return nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(csv, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
