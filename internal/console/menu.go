// Package console implements the interactive lookup menu.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/domain"
)

// Lookups is the read side of the catalog.
type Lookups interface {
	GetUser(ctx context.Context, userID string) (domain.User, bool, error)
	GetMovie(ctx context.Context, movieID int64) (domain.Movie, bool, error)
	GetUserRating(ctx context.Context, userID string, movieID int64) (domain.UserRating, bool, error)
}

// Menu reads options from an input stream and prints lookup results.
type Menu struct {
	lookups Lookups
	in      *bufio.Scanner
	out     io.Writer
	prompts bool
	timeout time.Duration
	logger  *zap.Logger
}

// Option customises a Menu.
type Option func(*Menu)

// WithPrompts forces prompt echo on or off. By default prompts are shown only
// when the input is a terminal.
func WithPrompts(enabled bool) Option {
	return func(m *Menu) { m.prompts = enabled }
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Menu) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLookupTimeout bounds each lookup. Zero disables the bound.
func WithLookupTimeout(d time.Duration) Option {
	return func(m *Menu) { m.timeout = d }
}

// New builds a Menu over in and out.
func New(lookups Lookups, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		lookups: lookups,
		in:      bufio.NewScanner(in),
		out:     out,
		prompts: isTerminal(in),
		timeout: 10 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run loops until the user picks Exit, input ends or ctx is cancelled. Lookup
// failures are reported and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, ok := m.ask("Select an option: ")
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case "1":
			m.searchUser(ctx)
		case "2":
			m.searchMovie(ctx)
		case "3":
			m.searchRating(ctx)
		case "4":
			fmt.Fprintln(m.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option. Try again.")
		}
	}
}

func (m *Menu) printMenu() {
	if !m.prompts {
		return
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "Menu:")
	fmt.Fprintln(m.out, "1. Search user")
	fmt.Fprintln(m.out, "2. Search movie")
	fmt.Fprintln(m.out, "3. Search RATED relationship between user and movie")
	fmt.Fprintln(m.out, "4. Exit")
}

// ask prints the prompt when enabled and reads one trimmed line.
func (m *Menu) ask(prompt string) (string, bool) {
	if m.prompts {
		fmt.Fprint(m.out, prompt)
	}
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) askMovieID() (int64, bool) {
	raw, ok := m.ask("Movie ID: ")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid movie ID %q.\n", raw)
		return 0, false
	}
	return id, true
}

func (m *Menu) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Menu) searchUser(ctx context.Context) {
	userID, ok := m.ask("User ID: ")
	if !ok {
		return
	}
	ctx, cancel := m.lookupContext(ctx)
	defer cancel()

	user, found, err := m.lookups.GetUser(ctx, userID)
	if m.reportError(err) {
		return
	}
	if !found {
		fmt.Fprintln(m.out, "User not found.")
		return
	}
	fmt.Fprintln(m.out, formatUser(user))
}

func (m *Menu) searchMovie(ctx context.Context) {
	movieID, ok := m.askMovieID()
	if !ok {
		return
	}
	ctx, cancel := m.lookupContext(ctx)
	defer cancel()

	movie, found, err := m.lookups.GetMovie(ctx, movieID)
	if m.reportError(err) {
		return
	}
	if !found {
		fmt.Fprintln(m.out, "Movie not found.")
		return
	}
	fmt.Fprintln(m.out, formatMovie(movie))
}

func (m *Menu) searchRating(ctx context.Context) {
	userID, ok := m.ask("User ID: ")
	if !ok {
		return
	}
	movieID, ok := m.askMovieID()
	if !ok {
		return
	}
	ctx, cancel := m.lookupContext(ctx)
	defer cancel()

	rating, found, err := m.lookups.GetUserRating(ctx, userID, movieID)
	if m.reportError(err) {
		return
	}
	if !found {
		fmt.Fprintln(m.out, "Rating not found.")
		return
	}
	fmt.Fprintln(m.out, formatUserRating(rating))
}

func (m *Menu) reportError(err error) bool {
	if err == nil {
		return false
	}
	m.logger.Error("console lookup failed", zap.Error(err))
	fmt.Fprintf(m.out, "Error: %v\n", err)
	return true
}

func formatUser(u domain.User) string {
	return fmt.Sprintf("User %s: %s", u.UserID, u.Name)
}

func formatMovie(mv domain.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Movie %d: %s", mv.MovieID, mv.Title)
	if mv.Year != 0 {
		fmt.Fprintf(&b, " (%d)", mv.Year)
	}
	if mv.Plot != "" {
		fmt.Fprintf(&b, "\n  %s", mv.Plot)
	}
	return b.String()
}

func formatUserRating(r domain.UserRating) string {
	when := time.Unix(r.Rating.Timestamp, 0).UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s rated %q %d/%d at %s", formatUser(r.User), r.Movie.Title, r.Rating.Rating, domain.MaxRating, when)
}
