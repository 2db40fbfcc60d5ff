package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vanshika/moviegraph/internal/apperr"
	"github.com/vanshika/moviegraph/internal/domain"
	"github.com/vanshika/moviegraph/internal/graph"
	"github.com/vanshika/moviegraph/internal/metrics"
)

// Operation names, used for errors, logs and metric labels.
const (
	OpConnect           = "connect"
	OpEnsureConstraints = "ensure_constraints"
	OpUpsertUser        = "upsert_user"
	OpUpsertMovie       = "upsert_movie"
	OpUpsertPerson      = "upsert_person"
	OpUpsertRating      = "upsert_rating"
	OpFindUser          = "find_user"
	OpFindMovie         = "find_movie"
	OpFindUserRating    = "find_user_rating"
	OpClearAll          = "clear_all"
)

var (
	// ErrMovieNotFound is the cause when a person is attached to an unknown movie.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrRatingEndpointsNotFound is the cause when the rated user or movie does not exist.
	ErrRatingEndpointsNotFound = errors.New("user or movie not found")
	errNoRecord                = errors.New("query returned no record")
)

// Repository encapsulates graph persistence for users, movies, people and ratings.
// All upserts are get-or-create keyed on business identifiers; correctness under
// concurrent callers relies on the store's constraints and MERGE isolation.
type Repository struct {
	client    graph.Client
	logger    *zap.Logger
	metrics   *metrics.Metrics
	policy    domain.RatingPolicy
	closeOnce sync.Once
}

// Option customises a Repository.
type Option func(*Repository)

// WithLogger sets the logger used to report failures.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records every operation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

// WithRatingPolicy selects how an existing RATED edge is treated. Unknown
// policies are ignored.
func WithRatingPolicy(policy domain.RatingPolicy) Option {
	return func(r *Repository) {
		if policy.Valid() {
			r.policy = policy
		}
	}
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, opts ...Option) *Repository {
	r := &Repository{
		logger: zap.NewNop(),
		policy: domain.RatingPolicyFirstWriteWins,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.client = client
	return r
}

// Connect opens a Neo4j connection, verifies it eagerly and returns a
// Repository that owns it. Failures are apperr.KindConnection errors.
func Connect(ctx context.Context, graphOpts graph.Options, opts ...Option) (*Repository, error) {
	r := New(nil, opts...)

	start := time.Now()
	client, err := graph.NewNeo4jClient(ctx, graphOpts)
	r.metrics.Observe(OpConnect, start, err)
	if err != nil {
		r.logger.Error("graph connection failed",
			zap.String("uri", graphOpts.URI),
			zap.String("database", graphOpts.Database),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("graph connection established",
		zap.String("uri", graphOpts.URI),
		zap.String("database", graphOpts.Database),
	)
	r.client = client
	return r, nil
}

// Close releases the underlying connection. It is safe on a nil Repository,
// on one without a client, and when called more than once.
func (r *Repository) Close(ctx context.Context) error {
	if r == nil || r.client == nil {
		return nil
	}
	var err error
	r.closeOnce.Do(func() {
		err = r.client.Close(ctx)
		if err != nil {
			r.logger.Warn("closing graph connection failed", zap.Error(err))
			return
		}
		r.logger.Info("graph connection closed")
	})
	return err
}

// Ping verifies the store is still reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r.client == nil {
		return apperr.Connection("ping", errors.New("repository has no connection"))
	}
	if err := r.client.VerifyConnectivity(ctx); err != nil {
		return apperr.Connection("ping", err)
	}
	return nil
}

// RatingPolicy reports the policy applied to existing RATED edges.
func (r *Repository) RatingPolicy() domain.RatingPolicy {
	return r.policy
}

// EnsureConstraints declares uniqueness on User.userId and Movie.movieId.
// Repeat calls are no-ops.
func (r *Repository) EnsureConstraints(ctx context.Context) (err error) {
	defer r.observe(OpEnsureConstraints, time.Now(), &err)

	for _, stmt := range constraintStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return apperr.Query(OpEnsureConstraints, fmt.Errorf("create constraint: %w", err))
		}
	}
	return nil
}

// UpsertUser returns the user keyed by userID, creating it with name if absent.
// The name of an existing user is never changed.
func (r *Repository) UpsertUser(ctx context.Context, userID, name string) (user domain.User, err error) {
	defer r.observe(OpUpsertUser, time.Now(), &err, zap.String("userId", userID))

	if userID == "" {
		return domain.User{}, apperr.Validation(OpUpsertUser, "user id is required")
	}

	res, err := r.client.ExecuteWrite(ctx, upsertUserCypher, map[string]any{
		"userId": userID,
		"name":   name,
	})
	if err != nil {
		return domain.User{}, apperr.Query(OpUpsertUser, fmt.Errorf("upsert user %s: %w", userID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.User{}, apperr.Query(OpUpsertUser, fmt.Errorf("upsert user %s: %w", userID, errNoRecord))
	}
	return decodeUser(rec["user"]), nil
}

// UpsertMovie returns the movie keyed by movie.MovieID, creating it with the
// supplied attributes if absent. Attributes of an existing movie are never changed.
func (r *Repository) UpsertMovie(ctx context.Context, movie domain.Movie) (stored domain.Movie, err error) {
	defer r.observe(OpUpsertMovie, time.Now(), &err, zap.Int64("movieId", movie.MovieID))

	res, err := r.client.ExecuteWrite(ctx, upsertMovieCypher, map[string]any{
		"movieId": movie.MovieID,
		"props":   movieProperties(movie),
	})
	if err != nil {
		return domain.Movie{}, apperr.Query(OpUpsertMovie, fmt.Errorf("upsert movie %d: %w", movie.MovieID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.Movie{}, apperr.Query(OpUpsertMovie, fmt.Errorf("upsert movie %d: %w", movie.MovieID, errNoRecord))
	}
	return decodeMovie(rec["movie"]), nil
}

// UpsertPerson gets or creates the person matched on every identity field, then
// links it to movieID with one ACTED_IN edge per role and, when roles include
// domain.RoleDirector, a single DIRECTED edge. Everything runs in one write
// transaction; an unknown movie rolls it back.
func (r *Repository) UpsertPerson(ctx context.Context, person domain.Person, movieID int64, roles []string) (stored domain.Person, err error) {
	defer r.observe(OpUpsertPerson, time.Now(), &err,
		zap.String("name", person.Name),
		zap.Int64("movieId", movieID),
		zap.Strings("roles", roles),
	)

	if person.Name == "" {
		return domain.Person{}, apperr.Validation(OpUpsertPerson, "person name is required")
	}

	err = r.client.ExecuteWriteTx(ctx, func(tx graph.Runner) error {
		res, err := tx.Run(ctx, movieExistsCypher, map[string]any{"movieId": movieID})
		if err != nil {
			return fmt.Errorf("match movie %d: %w", movieID, err)
		}
		if _, ok := res.First(); !ok {
			return fmt.Errorf("movie %d: %w", movieID, ErrMovieNotFound)
		}

		res, err = tx.Run(ctx, upsertPersonCypher, personParams(person))
		if err != nil {
			return fmt.Errorf("upsert person %s: %w", person.Name, err)
		}
		rec, ok := res.First()
		if !ok {
			return fmt.Errorf("upsert person %s: %w", person.Name, errNoRecord)
		}
		stored = decodePerson(rec["person"])
		personID := toString(rec["elementId"])

		for _, role := range roles {
			if _, err := tx.Run(ctx, actedInCypher, map[string]any{
				"personId": personID,
				"movieId":  movieID,
				"role":     role,
			}); err != nil {
				return fmt.Errorf("link role %q: %w", role, err)
			}
		}

		if slices.Contains(roles, domain.RoleDirector) {
			if _, err := tx.Run(ctx, directedCypher, map[string]any{
				"personId": personID,
				"movieId":  movieID,
			}); err != nil {
				return fmt.Errorf("link director: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Person{}, apperr.Query(OpUpsertPerson, err)
	}
	return stored, nil
}

// UpsertRating gets or creates the RATED edge between userID and movieID.
// A rating outside [domain.MinRating, domain.MaxRating] is rejected before any
// query runs. For an existing edge the repository's RatingPolicy decides
// whether rating and timestamp are overwritten.
func (r *Repository) UpsertRating(ctx context.Context, userID string, movieID int64, rating int, timestamp int64) (stored domain.Rating, err error) {
	defer r.observe(OpUpsertRating, time.Now(), &err,
		zap.String("userId", userID),
		zap.Int64("movieId", movieID),
		zap.Int("rating", rating),
	)

	if err := ValidateRating(rating); err != nil {
		return domain.Rating{}, err
	}
	if userID == "" {
		return domain.Rating{}, apperr.Validation(OpUpsertRating, "user id is required")
	}

	cypher := upsertRatingFirstWriteCypher
	if r.policy == domain.RatingPolicyLastWriteWins {
		cypher = upsertRatingLastWriteCypher
	}

	res, err := r.client.ExecuteWrite(ctx, cypher, map[string]any{
		"userId":    userID,
		"movieId":   movieID,
		"rating":    rating,
		"timestamp": timestamp,
	})
	if err != nil {
		return domain.Rating{}, apperr.Query(OpUpsertRating, fmt.Errorf("upsert rating %s->%d: %w", userID, movieID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.Rating{}, apperr.Query(OpUpsertRating, fmt.Errorf("rate %s->%d: %w", userID, movieID, ErrRatingEndpointsNotFound))
	}
	return decodeRating(rec["rating"]), nil
}

// ValidateRating checks the inclusive rating range.
func ValidateRating(rating int) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return apperr.Validation(OpUpsertRating, "rating must be between %d and %d, got %d", domain.MinRating, domain.MaxRating, rating)
	}
	return nil
}

// FindUser looks a user up by id. found is false when no user matches.
func (r *Repository) FindUser(ctx context.Context, userID string) (user domain.User, found bool, err error) {
	defer r.observe(OpFindUser, time.Now(), &err, zap.String("userId", userID))

	res, err := r.client.ExecuteRead(ctx, findUserCypher, map[string]any{"userId": userID})
	if err != nil {
		return domain.User{}, false, apperr.Query(OpFindUser, fmt.Errorf("find user %s: %w", userID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.User{}, false, nil
	}
	return decodeUser(rec["user"]), true, nil
}

// FindMovie looks a movie up by id. found is false when no movie matches.
func (r *Repository) FindMovie(ctx context.Context, movieID int64) (movie domain.Movie, found bool, err error) {
	defer r.observe(OpFindMovie, time.Now(), &err, zap.Int64("movieId", movieID))

	res, err := r.client.ExecuteRead(ctx, findMovieCypher, map[string]any{"movieId": movieID})
	if err != nil {
		return domain.Movie{}, false, apperr.Query(OpFindMovie, fmt.Errorf("find movie %d: %w", movieID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.Movie{}, false, nil
	}
	return decodeMovie(rec["movie"]), true, nil
}

// FindUserRating returns the (user, rating, movie) triple for a RATED edge.
// found is false when the user has not rated the movie.
func (r *Repository) FindUserRating(ctx context.Context, userID string, movieID int64) (rating domain.UserRating, found bool, err error) {
	defer r.observe(OpFindUserRating, time.Now(), &err, zap.String("userId", userID), zap.Int64("movieId", movieID))

	res, err := r.client.ExecuteRead(ctx, findUserRatingCypher, map[string]any{
		"userId":  userID,
		"movieId": movieID,
	})
	if err != nil {
		return domain.UserRating{}, false, apperr.Query(OpFindUserRating, fmt.Errorf("find rating %s->%d: %w", userID, movieID, err))
	}
	rec, ok := res.First()
	if !ok {
		return domain.UserRating{}, false, nil
	}
	return domain.UserRating{
		User:   decodeUser(rec["user"]),
		Rating: decodeRating(rec["rating"]),
		Movie:  decodeMovie(rec["movie"]),
	}, true, nil
}

// ClearAll deletes every node and relationship in the database.
func (r *Repository) ClearAll(ctx context.Context) (err error) {
	defer r.observe(OpClearAll, time.Now(), &err)

	if _, err := r.client.ExecuteWrite(ctx, clearAllCypher, nil); err != nil {
		return apperr.Query(OpClearAll, fmt.Errorf("clear graph: %w", err))
	}
	r.logger.Warn("graph cleared")
	return nil
}

func (r *Repository) observe(op string, start time.Time, errp *error, fields ...zapcore.Field) {
	err := *errp
	r.metrics.Observe(op, start, err)
	if err == nil {
		return
	}
	fields = append(fields, zap.String("operation", op), zap.Error(err))
	if apperr.IsValidation(err) {
		r.logger.Warn("graph operation rejected", fields...)
		return
	}
	r.logger.Error("graph operation failed", fields...)
}

func movieProperties(m domain.Movie) map[string]any {
	props := map[string]any{}
	setIf := func(key string, value any, present bool) {
		if present {
			props[key] = value
		}
	}
	setIf("title", m.Title, m.Title != "")
	setIf("year", m.Year, m.Year != 0)
	setIf("plot", m.Plot, m.Plot != "")
	setIf("tmdbId", m.TMDBID, m.TMDBID != 0)
	setIf("released", m.Released, m.Released != "")
	setIf("imdbRating", m.IMDBRating, m.IMDBRating != 0)
	setIf("runtime", m.Runtime, m.Runtime != 0)
	setIf("countries", m.Countries, len(m.Countries) > 0)
	setIf("imdbVotes", m.IMDBVotes, m.IMDBVotes != 0)
	setIf("url", m.URL, m.URL != "")
	setIf("revenue", m.Revenue, m.Revenue != 0)
	setIf("poster", m.Poster, m.Poster != "")
	setIf("budget", m.Budget, m.Budget != 0)
	setIf("languages", m.Languages, len(m.Languages) > 0)
	return props
}

// personParams always sends every identity field: MERGE rejects null values,
// so absent fields are matched as their zero value.
func personParams(p domain.Person) map[string]any {
	var died any
	if p.Died != nil && *p.Died != "" {
		died = *p.Died
	}
	return map[string]any{
		"name":   p.Name,
		"tmdbId": p.TMDBID,
		"born":   p.Born,
		"bornIn": p.BornIn,
		"url":    p.URL,
		"imdbId": p.IMDBID,
		"bio":    p.Bio,
		"poster": p.Poster,
		"died":   died,
	}
}

var constraintStatements = []string{
	`CREATE CONSTRAINT user_user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.userId IS UNIQUE`,
	`CREATE CONSTRAINT movie_movie_id_unique IF NOT EXISTS FOR (m:Movie) REQUIRE m.movieId IS UNIQUE`,
}

const upsertUserCypher = `
MERGE (u:User {userId: $userId})
ON CREATE SET u.name = $name
RETURN properties(u) AS user
`

const upsertMovieCypher = `
MERGE (m:Movie {movieId: $movieId})
ON CREATE SET m += $props
RETURN properties(m) AS movie
`

const movieExistsCypher = `
MATCH (m:Movie {movieId: $movieId})
RETURN m.movieId AS movieId
`

const upsertPersonCypher = `
MERGE (p:Person {
	name: $name,
	tmdbId: $tmdbId,
	born: $born,
	bornIn: $bornIn,
	url: $url,
	imdbId: $imdbId,
	bio: $bio,
	poster: $poster
})
SET p.died = coalesce(p.died, $died)
RETURN elementId(p) AS elementId, properties(p) AS person
`

const actedInCypher = `
MATCH (p:Person) WHERE elementId(p) = $personId
MATCH (m:Movie {movieId: $movieId})
MERGE (p)-[r:ACTED_IN {role: $role}]->(m)
RETURN count(r) AS edges
`

const directedCypher = `
MATCH (p:Person) WHERE elementId(p) = $personId
MATCH (m:Movie {movieId: $movieId})
MERGE (p)-[r:DIRECTED]->(m)
RETURN count(r) AS edges
`

const upsertRatingFirstWriteCypher = `
MATCH (u:User {userId: $userId}), (m:Movie {movieId: $movieId})
MERGE (u)-[r:RATED]->(m)
ON CREATE SET r.rating = $rating, r.timestamp = $timestamp
RETURN properties(r) AS rating
`

const upsertRatingLastWriteCypher = `
MATCH (u:User {userId: $userId}), (m:Movie {movieId: $movieId})
MERGE (u)-[r:RATED]->(m)
SET r.rating = $rating, r.timestamp = $timestamp
RETURN properties(r) AS rating
`

const findUserCypher = `
MATCH (u:User {userId: $userId})
RETURN properties(u) AS user
`

const findMovieCypher = `
MATCH (m:Movie {movieId: $movieId})
RETURN properties(m) AS movie
`

const findUserRatingCypher = `
MATCH (u:User {userId: $userId})-[r:RATED]->(m:Movie {movieId: $movieId})
RETURN properties(u) AS user, properties(r) AS rating, properties(m) AS movie
`

const clearAllCypher = `
MATCH (n)
DETACH DELETE n
`
