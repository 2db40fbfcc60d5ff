package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/moviegraph/internal/domain"
	"github.com/vanshika/moviegraph/internal/seed"
)

const defaultSeedWorkers = 4

// Seeder loads whole datasets through a bounded worker pool.
type Seeder struct {
	service *CatalogService
	repo    GraphRepository
	workers int
	logger  *zap.Logger
}

// NewSeeder creates a Seeder with the provided concurrency.
func NewSeeder(service *CatalogService, workers int) *Seeder {
	if workers <= 0 {
		workers = defaultSeedWorkers
	}
	return &Seeder{
		service: service,
		repo:    service.repo,
		workers: workers,
		logger:  service.logger.Named("seed"),
	}
}

// Seed ensures constraints, then loads users and movies, then credits, then
// ratings. Each phase waits for the previous one so edges always find their
// endpoints. Per-item failures are aggregated into the returned error and do
// not stop the run; cancellation does.
func (s *Seeder) Seed(ctx context.Context, ds seed.Dataset) (SeedReport, error) {
	var report SeedReport

	if err := s.repo.EnsureConstraints(ctx); err != nil {
		return report, err
	}

	var errs error
	nodes := make([]func(context.Context) error, 0, len(ds.Users)+len(ds.Movies))
	for _, u := range ds.Users {
		nodes = append(nodes, func(ctx context.Context) error {
			_, err := s.service.CreateUser(ctx, UserInput{UserID: u.UserID, Name: u.Name})
			return err
		})
	}
	for _, m := range ds.Movies {
		nodes = append(nodes, func(ctx context.Context) error {
			_, err := s.service.CreateMovie(ctx, MovieInputFrom(m))
			return err
		})
	}
	failed, err := s.run(ctx, nodes)
	if err != nil {
		return report, err
	}
	errs = multierr.Append(errs, failed.err)
	report.Failed += failed.count
	report.Users = len(ds.Users)
	report.Movies = len(ds.Movies)
	s.logger.Info("seeded nodes", zap.Int("users", report.Users), zap.Int("movies", report.Movies), zap.Int("failed", failed.count))

	failed, err = s.run(ctx, s.creditTasks(ds.People))
	if err != nil {
		return report, err
	}
	errs = multierr.Append(errs, failed.err)
	report.Failed += failed.count
	report.People = len(ds.People)
	s.logger.Info("seeded credits", zap.Int("people", report.People), zap.Int("failed", failed.count))

	ratings := make([]func(context.Context) error, 0, len(ds.Ratings))
	for _, r := range ds.Ratings {
		ratings = append(ratings, func(ctx context.Context) error {
			_, err := s.service.RateMovie(ctx, RatingInput{
				UserID:    r.UserID,
				MovieID:   r.MovieID,
				Rating:    r.Rating,
				Timestamp: &r.Timestamp,
			})
			return err
		})
	}
	failed, err = s.run(ctx, ratings)
	if err != nil {
		return report, err
	}
	errs = multierr.Append(errs, failed.err)
	report.Failed += failed.count
	report.Ratings = len(ds.Ratings)
	s.logger.Info("seeded ratings", zap.Int("ratings", report.Ratings), zap.Int("failed", failed.count))

	return report, errs
}

// personKey is the attribute tuple a Person MERGE matches on.
type personKey struct {
	name, born, bornIn, url, imdbID, bio, poster string
	tmdbID                                       int64
}

func personKeyOf(p domain.Person) personKey {
	return personKey{
		name:   normalizeName(p.Name),
		born:   p.Born,
		bornIn: p.BornIn,
		url:    p.URL,
		imdbID: p.IMDBID,
		bio:    p.Bio,
		poster: p.Poster,
		tmdbID: p.TMDBID,
	}
}

// creditTasks returns one task per distinct person. A person's credits run in
// dataset order inside their task, so two MERGEs of the same unkeyed tuple are
// never in flight together.
func (s *Seeder) creditTasks(credits []seed.Credit) []func(context.Context) error {
	var order []personKey
	groups := make(map[personKey][]seed.Credit)
	for _, c := range credits {
		key := personKeyOf(c.Person)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	tasks := make([]func(context.Context) error, 0, len(order))
	for _, key := range order {
		group := groups[key]
		tasks = append(tasks, func(ctx context.Context) error {
			var errs error
			for _, c := range group {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				_, err := s.service.AddPerson(ctx, PersonInputFrom(c.Person, c.MovieID, c.Roles))
				errs = multierr.Append(errs, err)
			}
			return errs
		})
	}
	return tasks
}

type failures struct {
	err   error
	count int
}

func (s *Seeder) run(ctx context.Context, tasks []func(context.Context) error) (failures, error) {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed failures
	)
	g.SetLimit(s.workers)

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := task(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				mu.Lock()
				failed.err = multierr.Append(failed.err, err)
				failed.count += len(multierr.Errors(err))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failed, err
	}
	if err := ctx.Err(); err != nil {
		return failed, err
	}
	return failed, nil
}
