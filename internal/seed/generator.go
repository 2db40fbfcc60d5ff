package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/moviegraph/internal/domain"
)

// GeneratorConfig drives the synthetic dataset generator.
type GeneratorConfig struct {
	NumUsers       int
	NumMovies      int
	NumPeople      int
	RatingsPerUser int
	// DirectorChance is the probability that a credit includes the Director role.
	DirectorChance float64
	Seed           int64
}

// DefaultGeneratorConfig returns settings for a small but non-trivial graph.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		NumUsers:       100,
		NumMovies:      50,
		NumPeople:      80,
		RatingsPerUser: 5,
		DirectorChance: 0.2,
		Seed:           42,
	}
}

// Generator produces synthetic movie graph data. The same seed always yields
// the same dataset.
type Generator struct {
	cfg       GeneratorConfig
	rand      *rand.Rand
	fragments nameFragments
}

// baseTimestamp is 2023-01-01T00:00:00Z, the first day of the reference ratings.
const baseTimestamp int64 = 1672531200

// NewGenerator returns a Generator, replacing non-positive settings with defaults.
func NewGenerator(cfg GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = def.NumUsers
	}
	if cfg.NumMovies <= 0 {
		cfg.NumMovies = def.NumMovies
	}
	if cfg.NumPeople < 0 {
		cfg.NumPeople = def.NumPeople
	}
	if cfg.RatingsPerUser < 0 {
		cfg.RatingsPerUser = def.RatingsPerUser
	}
	if cfg.RatingsPerUser > cfg.NumMovies {
		cfg.RatingsPerUser = cfg.NumMovies
	}
	if cfg.DirectorChance < 0 || cfg.DirectorChance > 1 {
		cfg.DirectorChance = def.DirectorChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises users, movies, credits and ratings. It respects context
// cancellation. Every (user, movie) pair is rated at most once.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	users := make([]domain.User, g.cfg.NumUsers)
	for i := range users {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		users[i] = domain.User{
			UserID: fmt.Sprintf("user%d", i+1),
			Name:   g.randomFullName(),
		}
	}

	movies := make([]domain.Movie, g.cfg.NumMovies)
	for i := range movies {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		year := 1950 + g.rand.Intn(75)
		movies[i] = domain.Movie{
			MovieID:    int64(i + 1),
			Title:      g.randomTitle(),
			Year:       year,
			Plot:       g.randomPlot(),
			Released:   fmt.Sprintf("%04d-%02d-%02d", year, 1+g.rand.Intn(12), 1+g.rand.Intn(28)),
			IMDBRating: float64(10+g.rand.Intn(81)) / 10,
			Runtime:    80 + g.rand.Intn(100),
			Countries:  []string{g.pick(g.fragments.countries)},
			Languages:  []string{g.pick(g.fragments.languages)},
		}
	}

	people := make([]Credit, g.cfg.NumPeople)
	for i := range people {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		roles := []string{g.pick(g.fragments.characters)}
		if g.rand.Float64() < g.cfg.DirectorChance {
			roles = append([]string{domain.RoleDirector}, roles...)
		}
		people[i] = Credit{
			Person: domain.Person{
				Name:   g.randomFullName(),
				TMDBID: int64(1000 + i),
				Born:   fmt.Sprintf("%04d-%02d-%02d", 1930+g.rand.Intn(70), 1+g.rand.Intn(12), 1+g.rand.Intn(28)),
				BornIn: g.pick(g.fragments.cities),
			},
			MovieID: movies[g.rand.Intn(len(movies))].MovieID,
			Roles:   roles,
		}
	}

	ratings := make([]RatingRecord, 0, len(users)*g.cfg.RatingsPerUser)
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		for _, idx := range g.rand.Perm(len(movies))[:g.cfg.RatingsPerUser] {
			ratings = append(ratings, RatingRecord{
				UserID:    user.UserID,
				MovieID:   movies[idx].MovieID,
				Rating:    g.rand.Intn(domain.MaxRating + 1),
				Timestamp: baseTimestamp + int64(g.rand.Intn(365))*86400,
			})
		}
	}

	return Dataset{Users: users, Movies: movies, People: people, Ratings: ratings}, nil
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.pick(g.fragments.first), g.pick(g.fragments.last))
}

func (g *Generator) randomTitle() string {
	return fmt.Sprintf("%s %s", g.pick(g.fragments.titleAdjectives), g.pick(g.fragments.titleNouns))
}

func (g *Generator) randomPlot() string {
	return fmt.Sprintf("%s %s %s.", g.pick(g.fragments.plotSubjects), g.pick(g.fragments.plotVerbs), g.pick(g.fragments.plotObjects))
}

type nameFragments struct {
	first           []string
	last            []string
	cities          []string
	countries       []string
	languages       []string
	characters      []string
	titleAdjectives []string
	titleNouns      []string
	plotSubjects    []string
	plotVerbs       []string
	plotObjects     []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:           []string{"Juan", "María", "Carlos", "Ana", "Diego", "Lucía", "Jane", "John", "Priya", "Liu", "Omar", "Sofia", "Noah", "Emma", "Zara"},
		last:            []string{"Pérez", "López", "Ruiz", "García", "Martín", "Smith", "Chen", "Patel", "Khan", "Kim", "Nguyen", "Silva"},
		cities:          []string{"Madrid", "Buenos Aires", "Mexico City", "London", "New York", "Los Angeles", "Tokyo", "Paris", "Rome"},
		countries:       []string{"USA", "UK", "Spain", "Mexico", "Argentina", "France", "Italy", "Japan"},
		languages:       []string{"English", "Spanish", "French", "Italian", "Japanese"},
		characters:      []string{"Detective", "Pilot", "Stranger", "Mentor", "Villain", "Narrator", "Sidekick", "Captain"},
		titleAdjectives: []string{"Silent", "Last", "Broken", "Hidden", "Endless", "Crimson", "Forgotten", "Electric"},
		titleNouns:      []string{"Horizon", "Empire", "Dream", "City", "Signal", "Garden", "Voyage", "Machine"},
		plotSubjects:    []string{"A reluctant hero", "Two estranged siblings", "A retired detective", "A crew of astronauts", "A small-town librarian"},
		plotVerbs:       []string{"uncovers", "races against", "falls for", "escapes from", "must outwit"},
		plotObjects:     []string{"a family secret", "a collapsing world", "an old rival", "a mysterious signal", "the city's mafia"},
	}
}
