package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/console"
	"github.com/vanshika/moviegraph/internal/seed"
	"github.com/vanshika/moviegraph/internal/service"
)

var errClearNotConfirmed = errors.New("refusing to clear the graph without --yes")

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the reference dataset, or a dataset file, into the graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "YAML or JSON dataset to load instead of the built-in reference data",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "concurrent upserts (defaults to SEED_WORKERS or 4)",
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "delete every node before seeding",
			},
		},
		Action: withRuntime(runSeed),
	}
}

func runSeed(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	ds, source, err := loadDataset(cmd.String("file"))
	if err != nil {
		return err
	}

	if cmd.Bool("clear") {
		if err := rt.repo.ClearAll(ctx); err != nil {
			return err
		}
	}

	workers := rt.cfg.Seed.Workers
	if cmd.IsSet("workers") {
		workers = cmd.Int("workers")
	}

	start := time.Now()
	report, err := service.NewSeeder(rt.catalog, workers).Seed(ctx, ds)
	rt.logger.Info("seed finished",
		zap.String("source", source),
		zap.Int("users", report.Users),
		zap.Int("movies", report.Movies),
		zap.Int("people", report.People),
		zap.Int("ratings", report.Ratings),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if printErr := printJSON(rt.out, report); printErr != nil {
		return printErr
	}
	return err
}

func loadDataset(path string) (seed.Dataset, string, error) {
	if path == "" {
		ds, err := seed.Reference()
		return ds, "reference", err
	}
	ds, err := seed.Load(path)
	return ds, path, err
}

func constraintsCommand() *cli.Command {
	return &cli.Command{
		Name:  "constraints",
		Usage: "Create the User.userId and Movie.movieId uniqueness constraints",
		Action: withRuntime(func(ctx context.Context, _ *cli.Command, rt *runtime) error {
			if err := rt.repo.EnsureConstraints(ctx); err != nil {
				return err
			}
			fmt.Fprintln(rt.out, "constraints ensured")
			return nil
		}),
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every node and relationship in the database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "confirm the deletion",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("yes") {
				return errClearNotConfirmed
			}
			return withRuntime(func(ctx context.Context, _ *cli.Command, rt *runtime) error {
				if err := rt.repo.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(rt.out, "graph cleared")
				return nil
			})(ctx, cmd)
		},
	}
}

func menuCommand() *cli.Command {
	return &cli.Command{
		Name:  "menu",
		Usage: "Interactive lookup menu over stdin",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "prompts",
				Usage: "always print the menu and prompts, even when stdin is not a terminal",
			},
		},
		Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
			opts := []console.Option{console.WithLogger(rt.logger.Named("console"))}
			if cmd.IsSet("prompts") {
				opts = append(opts, console.WithPrompts(cmd.Bool("prompts")))
			}
			return console.New(rt.catalog, os.Stdin, rt.out, opts...).Run(ctx)
		}),
	}
}
