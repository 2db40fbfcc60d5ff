package domain

// User models a :User node keyed by UserID.
type User struct {
	UserID string `json:"userId" yaml:"userId"`
	Name   string `json:"name" yaml:"name"`
}

// Movie models a :Movie node keyed by MovieID. Zero-valued optional fields are
// not persisted.
type Movie struct {
	MovieID    int64    `json:"movieId" yaml:"movieId"`
	Title      string   `json:"title" yaml:"title"`
	Year       int      `json:"year,omitempty" yaml:"year,omitempty"`
	Plot       string   `json:"plot,omitempty" yaml:"plot,omitempty"`
	TMDBID     int64    `json:"tmdbId,omitempty" yaml:"tmdbId,omitempty"`
	Released   string   `json:"released,omitempty" yaml:"released,omitempty"`
	IMDBRating float64  `json:"imdbRating,omitempty" yaml:"imdbRating,omitempty"`
	Runtime    int      `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Countries  []string `json:"countries,omitempty" yaml:"countries,omitempty"`
	IMDBVotes  int64    `json:"imdbVotes,omitempty" yaml:"imdbVotes,omitempty"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
	Revenue    int64    `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	Poster     string   `json:"poster,omitempty" yaml:"poster,omitempty"`
	Budget     int64    `json:"budget,omitempty" yaml:"budget,omitempty"`
	Languages  []string `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// Person models a :Person node. There is no single business key: the node is
// matched on every identity field at once, so two records differing in any of
// them (a typo in Bio, say) become two people.
type Person struct {
	Name   string `json:"name" yaml:"name"`
	TMDBID int64  `json:"tmdbId,omitempty" yaml:"tmdbId,omitempty"`
	Born   string `json:"born,omitempty" yaml:"born,omitempty"`
	BornIn string `json:"bornIn,omitempty" yaml:"bornIn,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	IMDBID string `json:"imdbId,omitempty" yaml:"imdbId,omitempty"`
	Bio    string `json:"bio,omitempty" yaml:"bio,omitempty"`
	Poster string `json:"poster,omitempty" yaml:"poster,omitempty"`
	// Died is only ever filled in, never overwritten.
	Died *string `json:"died,omitempty" yaml:"died,omitempty"`
}

// RoleDirector is the role that additionally yields a DIRECTED edge.
const RoleDirector = "Director"

// Rating models a RATED edge from a user to a movie.
type Rating struct {
	Rating    int   `json:"rating"`
	Timestamp int64 `json:"timestamp"`
}

// UserRating is the (user, rating, movie) triple returned by rating lookups.
type UserRating struct {
	User   User   `json:"user"`
	Rating Rating `json:"rating"`
	Movie  Movie  `json:"movie"`
}

// Rating bounds, inclusive.
const (
	MinRating = 0
	MaxRating = 5
)

// RatingPolicy decides what happens when a RATED edge already exists.
type RatingPolicy string

const (
	// RatingPolicyFirstWriteWins sets rating and timestamp only when the edge is
	// created; later calls leave them untouched.
	RatingPolicyFirstWriteWins RatingPolicy = "first-write-wins"
	// RatingPolicyLastWriteWins overwrites rating and timestamp on every call.
	RatingPolicyLastWriteWins RatingPolicy = "last-write-wins"
)

// Valid reports whether p is a known policy.
func (p RatingPolicy) Valid() bool {
	return p == RatingPolicyFirstWriteWins || p == RatingPolicyLastWriteWins
}
