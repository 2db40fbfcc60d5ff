package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/vanshika/moviegraph/internal/service"
)

var errNotFound = errors.New("not found")

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Look up or create users",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a user",
				ArgsUsage: "<userId>",
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected <userId>, got %d arguments", cmd.Args().Len())
					}
					user, found, err := rt.catalog.GetUser(ctx, cmd.Args().First())
					return printResult(rt, user, found, err)
				}),
			},
			{
				Name:      "create",
				Usage:     "Get or create a user",
				ArgsUsage: "<userId> <name>",
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected <userId> <name>, got %d arguments", cmd.Args().Len())
					}
					user, err := rt.catalog.CreateUser(ctx, service.UserInput{
						UserID: cmd.Args().Get(0),
						Name:   cmd.Args().Get(1),
					})
					return printResult(rt, user, true, err)
				}),
			},
		},
	}
}

func movieCommand() *cli.Command {
	return &cli.Command{
		Name:  "movie",
		Usage: "Look up or create movies",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a movie",
				ArgsUsage: "<movieId>",
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					movieID, err := movieIDArg(cmd, 0)
					if err != nil {
						return err
					}
					movie, found, err := rt.catalog.GetMovie(ctx, movieID)
					return printResult(rt, movie, found, err)
				}),
			},
			{
				Name:  "create",
				Usage: "Get or create a movie",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "movie id", Required: true},
					&cli.StringFlag{Name: "title", Usage: "movie title", Required: true},
					&cli.IntFlag{Name: "year", Usage: "release year"},
					&cli.StringFlag{Name: "plot", Usage: "short plot summary"},
					&cli.StringFlag{Name: "released", Usage: "release date (YYYY-MM-DD)"},
					&cli.StringSliceFlag{Name: "country", Usage: "production country (repeatable)"},
					&cli.StringSliceFlag{Name: "language", Usage: "spoken language (repeatable)"},
				},
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					movie, err := rt.catalog.CreateMovie(ctx, service.MovieInput{
						MovieID:   cmd.Int64("id"),
						Title:     cmd.String("title"),
						Year:      cmd.Int("year"),
						Plot:      cmd.String("plot"),
						Released:  cmd.String("released"),
						Countries: cmd.StringSlice("country"),
						Languages: cmd.StringSlice("language"),
					})
					return printResult(rt, movie, true, err)
				}),
			},
		},
	}
}

func personCommand() *cli.Command {
	return &cli.Command{
		Name:  "person",
		Usage: "Credit people on movies",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Get or create a person and link them to a movie under each role",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "person name", Required: true},
					&cli.Int64Flag{Name: "movie", Usage: "movie id", Required: true},
					&cli.StringSliceFlag{Name: "role", Usage: "role on the movie (repeatable); Director adds a DIRECTED edge"},
					&cli.Int64Flag{Name: "tmdb-id", Usage: "TMDB id"},
					&cli.StringFlag{Name: "born", Usage: "birth date"},
					&cli.StringFlag{Name: "born-in", Usage: "birth place"},
					&cli.StringFlag{Name: "died", Usage: "death date"},
					&cli.StringFlag{Name: "bio", Usage: "short biography"},
				},
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					input := service.PersonInput{
						Name:    cmd.String("name"),
						MovieID: cmd.Int64("movie"),
						Roles:   cmd.StringSlice("role"),
						TMDBID:  cmd.Int64("tmdb-id"),
						Born:    cmd.String("born"),
						BornIn:  cmd.String("born-in"),
						Bio:     cmd.String("bio"),
					}
					if died := cmd.String("died"); died != "" {
						input.Died = &died
					}
					person, err := rt.catalog.AddPerson(ctx, input)
					return printResult(rt, person, true, err)
				}),
			},
		},
	}
}

func ratingCommand() *cli.Command {
	return &cli.Command{
		Name:  "rating",
		Usage: "Look up or record ratings",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print the rating a user gave a movie",
				ArgsUsage: "<userId> <movieId>",
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("expected <userId> <movieId>, got %d arguments", cmd.Args().Len())
					}
					movieID, err := movieIDArg(cmd, 1)
					if err != nil {
						return err
					}
					rating, found, err := rt.catalog.GetUserRating(ctx, cmd.Args().Get(0), movieID)
					return printResult(rt, rating, found, err)
				}),
			},
			{
				Name:      "set",
				Usage:     "Rate a movie from 0 to 5",
				ArgsUsage: "<userId> <movieId> <rating>",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "timestamp", Usage: "unix seconds (defaults to now)"},
				},
				Action: withRuntime(func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
					if cmd.Args().Len() != 3 {
						return fmt.Errorf("expected <userId> <movieId> <rating>, got %d arguments", cmd.Args().Len())
					}
					movieID, err := movieIDArg(cmd, 1)
					if err != nil {
						return err
					}
					value, err := strconv.Atoi(cmd.Args().Get(2))
					if err != nil {
						return fmt.Errorf("rating must be an integer: %w", err)
					}
					input := service.RatingInput{
						UserID:  cmd.Args().Get(0),
						MovieID: movieID,
						Rating:  value,
					}
					if cmd.IsSet("timestamp") {
						ts := cmd.Int64("timestamp")
						input.Timestamp = &ts
					}
					rating, err := rt.catalog.RateMovie(ctx, input)
					return printResult(rt, rating, true, err)
				}),
			},
		},
	}
}

func movieIDArg(cmd *cli.Command, idx int) (int64, error) {
	raw := cmd.Args().Get(idx)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("movie id %q is not an integer", raw)
	}
	return id, nil
}

// printResult prints v as JSON, or reports a miss as errNotFound.
func printResult(rt *runtime, v any, found bool, err error) error {
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(rt.out, "not found")
		return errNotFound
	}
	return printJSON(rt.out, v)
}
