package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/apperr"
	"github.com/vanshika/moviegraph/internal/domain"
	"github.com/vanshika/moviegraph/internal/metrics"
	"github.com/vanshika/moviegraph/internal/repository"
	"github.com/vanshika/moviegraph/internal/service"
)

type apiStubRepo struct {
	users    map[string]domain.User
	movies   map[int64]domain.Movie
	ratings  map[string]domain.UserRating
	writeErr error
}

func newAPIStubRepo() *apiStubRepo {
	return &apiStubRepo{
		users:   map[string]domain.User{"user1": {UserID: "user1", Name: "Juan Pérez"}},
		movies:  map[int64]domain.Movie{1: {MovieID: 1, Title: "El Padrino", Year: 1972}},
		ratings: map[string]domain.UserRating{},
	}
}

func ratingKey(userID string, movieID int64) string {
	return fmt.Sprintf("%s/%d", userID, movieID)
}

func (a *apiStubRepo) EnsureConstraints(context.Context) error { return nil }

func (a *apiStubRepo) UpsertUser(_ context.Context, userID, name string) (domain.User, error) {
	if a.writeErr != nil {
		return domain.User{}, a.writeErr
	}
	if u, ok := a.users[userID]; ok {
		return u, nil
	}
	u := domain.User{UserID: userID, Name: name}
	a.users[userID] = u
	return u, nil
}

func (a *apiStubRepo) UpsertMovie(_ context.Context, movie domain.Movie) (domain.Movie, error) {
	if m, ok := a.movies[movie.MovieID]; ok {
		return m, nil
	}
	a.movies[movie.MovieID] = movie
	return movie, nil
}

func (a *apiStubRepo) UpsertPerson(_ context.Context, person domain.Person, movieID int64, _ []string) (domain.Person, error) {
	if _, ok := a.movies[movieID]; !ok {
		return domain.Person{}, apperr.Query(repository.OpUpsertPerson, fmt.Errorf("movie %d: %w", movieID, repository.ErrMovieNotFound))
	}
	return person, nil
}

func (a *apiStubRepo) UpsertRating(_ context.Context, userID string, movieID int64, rating int, ts int64) (domain.Rating, error) {
	u, okUser := a.users[userID]
	m, okMovie := a.movies[movieID]
	if !okUser || !okMovie {
		return domain.Rating{}, apperr.Query(repository.OpUpsertRating, repository.ErrRatingEndpointsNotFound)
	}
	r := domain.Rating{Rating: rating, Timestamp: ts}
	a.ratings[ratingKey(userID, movieID)] = domain.UserRating{User: u, Rating: r, Movie: m}
	return r, nil
}

func (a *apiStubRepo) FindUser(_ context.Context, userID string) (domain.User, bool, error) {
	u, ok := a.users[userID]
	return u, ok, nil
}

func (a *apiStubRepo) FindMovie(_ context.Context, movieID int64) (domain.Movie, bool, error) {
	m, ok := a.movies[movieID]
	return m, ok, nil
}

func (a *apiStubRepo) FindUserRating(_ context.Context, userID string, movieID int64) (domain.UserRating, bool, error) {
	r, ok := a.ratings[ratingKey(userID, movieID)]
	return r, ok, nil
}

type stubHealth struct{ err error }

func (s stubHealth) Probe(context.Context) error { return s.err }

func newTestRouter(repo service.GraphRepository, deps RouterDependencies) http.Handler {
	logger := zap.NewNop()
	svc := service.NewCatalogService(repo, logger)
	svc.WithClock(func() time.Time { return time.Unix(1672531200, 0) })
	deps.API = NewAPIHandlers(logger, svc)
	return NewRouter(logger, deps)
}

func do(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetUser(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{})

	rec := do(t, router, http.MethodGet, "/users/user1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, domain.User{UserID: "user1", Name: "Juan Pérez"}, user)

	rec = do(t, router, http.MethodGet, "/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMovie(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{})

	rec := do(t, router, http.MethodGet, "/movies/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"El Padrino"`)

	rec = do(t, router, http.MethodGet, "/movies/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/movies/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateThenLookup(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{})

	rec := do(t, router, http.MethodPost, "/ratings", map[string]any{"userId": "user1", "movieId": 1, "rating": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/users/user1/ratings/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.UserRating
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.Rating{Rating: 5, Timestamp: 1672531200}, got.Rating)
	assert.Equal(t, "El Padrino", got.Movie.Title)

	rec = do(t, router, http.MethodGet, "/users/user1/ratings/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateMovieValidation(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{})

	rec := do(t, router, http.MethodPost, "/ratings", map[string]any{"userId": "user1", "movieId": 1, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rating must be at most 5")

	rec = do(t, router, http.MethodPost, "/ratings", map[string]any{"userId": "ghost", "movieId": 1, "rating": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/ratings", map[string]any{"userId": "user1", "unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEndpoints(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{})

	rec := do(t, router, http.MethodPost, "/users", map[string]any{"userId": "user2", "name": "María López"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "María López")

	rec = do(t, router, http.MethodPost, "/users", map[string]any{"userId": "user1", "name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Juan Pérez")

	rec = do(t, router, http.MethodPost, "/movies", map[string]any{"movieId": 2, "title": "The Matrix", "year": 1999})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/people", map[string]any{"name": "Keanu Reeves", "movieId": 2, "roles": []string{"Neo"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/people", map[string]any{"name": "Nobody", "movieId": 404, "roles": []string{"Director"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryErrorsAreInternal(t *testing.T) {
	repo := newAPIStubRepo()
	repo.writeErr = apperr.Query(repository.OpUpsertUser, errors.New("session expired"))
	router := newTestRouter(repo, RouterDependencies{})

	rec := do(t, router, http.MethodPost, "/users", map[string]any{"userId": "user9", "name": "Nine"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "session expired")
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{Health: stubHealth{}})
	rec := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	down := apperr.Connection("ping", errors.New("connection refused"))
	router = newTestRouter(newAPIStubRepo(), RouterDependencies{Health: stubHealth{err: down}})
	rec = do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Observe(repository.OpFindUser, time.Now(), nil)

	router := newTestRouter(newAPIStubRepo(), RouterDependencies{Metrics: reg})
	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moviegraph_repository_operations_total")

	router = newTestRouter(newAPIStubRepo(), RouterDependencies{})
	rec = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(newAPIStubRepo(), RouterDependencies{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/ratings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}
