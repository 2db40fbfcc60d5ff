// Package main provides the moviegraph CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/config"
	"github.com/vanshika/moviegraph/internal/domain"
	"github.com/vanshika/moviegraph/internal/graph"
	"github.com/vanshika/moviegraph/internal/logging"
	"github.com/vanshika/moviegraph/internal/repository"
	"github.com/vanshika/moviegraph/internal/service"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:    "moviegraph",
		Version: version,
		Usage:   "Manage a movie rating graph stored in Neo4j",
		Writer:  os.Stdout,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			seedCommand(),
			constraintsCommand(),
			userCommand(),
			movieCommand(),
			personCommand(),
			ratingCommand(),
			menuCommand(),
			clearCommand(),
			datagenCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "graph database connection URI",
			Sources: cli.EnvVars("GRAPH_URI"),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "graph database name",
			Sources: cli.EnvVars("GRAPH_DATABASE"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "graph database username (empty disables auth)",
			Sources: cli.EnvVars("GRAPH_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "graph database password",
			Sources: cli.EnvVars("GRAPH_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "rating-policy",
			Usage:   "behaviour for existing ratings: first-write-wins or last-write-wins",
			Sources: cli.EnvVars("RATING_POLICY"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "console or json",
			Sources: cli.EnvVars("LOG_FORMAT"),
		},
	}
}

// loadConfig layers explicitly set flags over config.Load.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"uri", &cfg.Graph.URI},
		{"database", &cfg.Graph.Database},
		{"username", &cfg.Graph.Username},
		{"password", &cfg.Graph.Password},
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if cmd.IsSet(o.flag) {
			*o.target = cmd.String(o.flag)
		}
	}
	if cmd.IsSet("rating-policy") {
		cfg.Repository.RatingPolicy = domain.RatingPolicy(cmd.String("rating-policy"))
		if !cfg.Repository.RatingPolicy.Valid() {
			return config.Config{}, fmt.Errorf("invalid rating policy %q", cfg.Repository.RatingPolicy)
		}
	}
	return cfg, nil
}

// runtime bundles what every store-backed command needs.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	repo    *repository.Repository
	catalog *service.CatalogService
	out     io.Writer
}

func setup(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	repo, err := repository.Connect(ctx, graphOptions(cfg.Graph),
		repository.WithLogger(logger.Named("repository")),
		repository.WithRatingPolicy(cfg.Repository.RatingPolicy),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		catalog: service.NewCatalogService(repo, logger),
		out:     cmd.Root().Writer,
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.repo.Close(context.Background()); err != nil {
		rt.logger.Warn("closing repository failed", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// withRuntime adapts a store-backed action to a cli.ActionFunc.
func withRuntime(action func(ctx context.Context, cmd *cli.Command, rt *runtime) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		rt, err := setup(ctx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		return action(ctx, cmd, rt)
	}
}

func graphOptions(cfg config.GraphConfig) graph.Options {
	return graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	}
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
