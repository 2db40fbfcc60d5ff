package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/moviegraph/internal/apperr"
	"github.com/vanshika/moviegraph/internal/domain"
)

type stubLookups struct {
	userErr error
}

func (s stubLookups) GetUser(_ context.Context, userID string) (domain.User, bool, error) {
	if s.userErr != nil {
		return domain.User{}, false, s.userErr
	}
	if userID != "user1" {
		return domain.User{}, false, nil
	}
	return domain.User{UserID: "user1", Name: "Juan Pérez"}, true, nil
}

func (s stubLookups) GetMovie(_ context.Context, movieID int64) (domain.Movie, bool, error) {
	if movieID != 1 {
		return domain.Movie{}, false, nil
	}
	return domain.Movie{MovieID: 1, Title: "El Padrino", Year: 1972, Plot: "Historia de la mafia italiana"}, true, nil
}

func (s stubLookups) GetUserRating(_ context.Context, userID string, movieID int64) (domain.UserRating, bool, error) {
	if userID != "user1" || movieID != 1 {
		return domain.UserRating{}, false, nil
	}
	return domain.UserRating{
		User:   domain.User{UserID: "user1", Name: "Juan Pérez"},
		Rating: domain.Rating{Rating: 5, Timestamp: 1672531200},
		Movie:  domain.Movie{MovieID: 1, Title: "El Padrino"},
	}, true, nil
}

func runMenu(t *testing.T, lookups Lookups, input string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	menu := New(lookups, strings.NewReader(input), &out, opts...)
	require.NoError(t, menu.Run(context.Background()))
	return out.String()
}

func TestMenu_Lookups(t *testing.T) {
	out := runMenu(t, stubLookups{}, "1\nuser1\n2\n1\n3\nuser1\n1\n4\n")

	assert.Contains(t, out, "User user1: Juan Pérez")
	assert.Contains(t, out, "Movie 1: El Padrino (1972)")
	assert.Contains(t, out, "Historia de la mafia italiana")
	assert.Contains(t, out, `rated "El Padrino" 5/5 at 2023-01-01T00:00:00Z`)
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))
}

func TestMenu_NotFoundAndInvalidInput(t *testing.T) {
	out := runMenu(t, stubLookups{}, "1\nnobody\n2\nabc\n2\n99\n3\nuser5\n1\n9\n4\n")

	assert.Contains(t, out, "User not found.")
	assert.Contains(t, out, `Invalid movie ID "abc".`)
	assert.Contains(t, out, "Movie not found.")
	assert.Contains(t, out, "Rating not found.")
	assert.Contains(t, out, "Invalid option. Try again.")
}

func TestMenu_ErrorAbortsOnlyCurrentIteration(t *testing.T) {
	lookups := stubLookups{userErr: apperr.Query("find_user", errors.New("session expired"))}
	out := runMenu(t, lookups, "1\nuser1\n2\n1\n4\n")

	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "session expired")
	assert.Contains(t, out, "Movie 1: El Padrino")
}

func TestMenu_EndOfInputStops(t *testing.T) {
	out := runMenu(t, stubLookups{}, "1\nuser1\n")
	assert.Contains(t, out, "User user1: Juan Pérez")
	assert.NotContains(t, out, "Bye.")
}

func TestMenu_Prompts(t *testing.T) {
	quiet := runMenu(t, stubLookups{}, "4\n")
	assert.NotContains(t, quiet, "Menu:")

	loud := runMenu(t, stubLookups{}, "4\n", WithPrompts(true))
	assert.Contains(t, loud, "Menu:")
	assert.Contains(t, loud, "4. Exit")
	assert.Contains(t, loud, "Select an option: ")
}

func TestMenu_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(stubLookups{}, strings.NewReader("1\nuser1\n"), &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
