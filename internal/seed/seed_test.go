package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/moviegraph/internal/domain"
)

func TestReference(t *testing.T) {
	ds, err := Reference()
	require.NoError(t, err)

	assert.Len(t, ds.Users, 5)
	assert.Len(t, ds.Movies, 5)
	assert.Len(t, ds.Ratings, 10)
	assert.NotEmpty(t, ds.People)

	assert.Equal(t, domain.User{UserID: "user1", Name: "Juan Pérez"}, ds.Users[0])
	assert.Equal(t, "El Padrino", ds.Movies[0].Title)
	assert.Equal(t, 1972, ds.Movies[0].Year)
	assert.Equal(t, RatingRecord{UserID: "user1", MovieID: 1, Rating: 5, Timestamp: 1672531200}, ds.Ratings[0])

	var brando *Credit
	for i := range ds.People {
		if ds.People[i].Name == "Marlon Brando" {
			brando = &ds.People[i]
		}
	}
	require.NotNil(t, brando)
	require.NotNil(t, brando.Died)
	assert.Equal(t, "2004-07-01", *brando.Died)
	assert.Equal(t, int64(1), brando.MovieID)
}

func TestReference_RatingsReferenceKnownNodes(t *testing.T) {
	ds, err := Reference()
	require.NoError(t, err)

	users := map[string]bool{}
	for _, u := range ds.Users {
		users[u.UserID] = true
	}
	movies := map[int64]bool{}
	for _, m := range ds.Movies {
		movies[m.MovieID] = true
	}
	for _, r := range ds.Ratings {
		assert.True(t, users[r.UserID], "unknown user %s", r.UserID)
		assert.True(t, movies[r.MovieID], "unknown movie %d", r.MovieID)
		assert.GreaterOrEqual(t, r.Rating, domain.MinRating)
		assert.LessOrEqual(t, r.Rating, domain.MaxRating)
	}
	for _, c := range ds.People {
		assert.True(t, movies[c.MovieID], "credit %s points at unknown movie %d", c.Name, c.MovieID)
	}
}

func TestWriteThenLoad(t *testing.T) {
	ds, err := Reference()
	require.NoError(t, err)

	for _, name := range []string{"dataset.yaml", "nested/dataset.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Write(ds, path))

		loaded, err := Load(path)
		require.NoError(t, err)
		if diff := cmp.Diff(ds, loaded); diff != "" {
			t.Fatalf("%s: dataset mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerator_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{NumUsers: 20, NumMovies: 10, NumPeople: 15, RatingsPerUser: 3, DirectorChance: 0.5, Seed: 7}

	first, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := NewGenerator(cfg).Generate(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same seed produced different datasets (-first +second):\n%s", diff)
	}

	assert.Len(t, first.Users, 20)
	assert.Len(t, first.Movies, 10)
	assert.Len(t, first.People, 15)
	assert.Len(t, first.Ratings, 60)
}

func TestGenerator_RatingsAreUniqueAndInRange(t *testing.T) {
	ds, err := NewGenerator(GeneratorConfig{NumUsers: 30, NumMovies: 4, RatingsPerUser: 10, Seed: 99}).Generate(context.Background())
	require.NoError(t, err)

	// RatingsPerUser is capped at the number of movies.
	assert.Len(t, ds.Ratings, 30*4)

	seen := map[string]bool{}
	for _, r := range ds.Ratings {
		key := fmt.Sprintf("%s/%d", r.UserID, r.MovieID)
		assert.False(t, seen[key], "duplicate rating %s", key)
		seen[key] = true
		assert.GreaterOrEqual(t, r.Rating, domain.MinRating)
		assert.LessOrEqual(t, r.Rating, domain.MaxRating)
	}
}

func TestGenerator_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(DefaultGeneratorConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
