package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/vanshika/moviegraph/internal/domain"
	"github.com/vanshika/moviegraph/internal/seed"
)

func newTestApp(out *bytes.Buffer, action cli.ActionFunc) *cli.Command {
	commands := []*cli.Command{datagenCommand(), clearCommand()}
	if action != nil {
		commands = append(commands, &cli.Command{Name: "probe", Action: action})
	}
	return &cli.Command{
		Name:     "moviegraph",
		Writer:   out,
		Flags:    globalFlags(),
		Commands: commands,
	}
}

func TestDatagenWritesLoadableDataset(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "dataset.json")

	err := newTestApp(&out, nil).Run(context.Background(), []string{
		"moviegraph", "datagen",
		"--users", "3", "--movies", "4", "--people", "2", "--ratings-per-user", "2",
		"--seed", "11", "--output", path,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Generated 3 users, 4 movies, 2 credits and 6 ratings")

	ds, err := seed.Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Users, 3)
	assert.Len(t, ds.Movies, 4)
	assert.Len(t, ds.Ratings, 6)
}

func TestClearRequiresConfirmation(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out, nil).Run(context.Background(), []string{"moviegraph", "clear"})
	assert.ErrorIs(t, err, errClearNotConfirmed)
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("GRAPH_URI", "bolt://from-env:7687")
	t.Setenv("GRAPH_DATABASE", "")
	t.Setenv("RATING_POLICY", "")
	t.Setenv("MOVIEGRAPH_CONFIG", "")

	var out bytes.Buffer
	var got struct {
		uri, database string
		policy        domain.RatingPolicy
	}
	err := newTestApp(&out, func(_ context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		got.uri, got.database, got.policy = cfg.Graph.URI, cfg.Graph.Database, cfg.Repository.RatingPolicy
		return nil
	}).Run(context.Background(), []string{
		"moviegraph", "--database", "movies", "--rating-policy", "last-write-wins", "probe",
	})
	require.NoError(t, err)

	assert.Equal(t, "bolt://from-env:7687", got.uri)
	assert.Equal(t, "movies", got.database)
	assert.Equal(t, domain.RatingPolicyLastWriteWins, got.policy)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("MOVIEGRAPH_CONFIG", "")
	t.Setenv("RATING_POLICY", "")

	var out bytes.Buffer
	err := newTestApp(&out, func(_ context.Context, cmd *cli.Command) error {
		_, err := loadConfig(cmd)
		return err
	}).Run(context.Background(), []string{"moviegraph", "--rating-policy", "whatever", "probe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rating policy")
}

func TestLoadDatasetDefaultsToReference(t *testing.T) {
	ds, source, err := loadDataset("")
	require.NoError(t, err)
	assert.Equal(t, "reference", source)
	assert.Len(t, ds.Users, 5)
}
