package service

import (
	"github.com/vanshika/moviegraph/internal/domain"
)

// UserInput is the inbound payload for creating a user. Name may be empty.
type UserInput struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name"`
}

// MovieInput is the inbound payload for creating a movie. Only MovieID and
// Title are mandatory.
type MovieInput struct {
	MovieID    int64    `json:"movieId" validate:"gt=0"`
	Title      string   `json:"title" validate:"required"`
	Year       int      `json:"year,omitempty" validate:"omitempty,gte=1870,lte=2200"`
	Plot       string   `json:"plot,omitempty"`
	TMDBID     int64    `json:"tmdbId,omitempty" validate:"gte=0"`
	Released   string   `json:"released,omitempty"`
	IMDBRating float64  `json:"imdbRating,omitempty" validate:"gte=0,lte=10"`
	Runtime    int      `json:"runtime,omitempty" validate:"gte=0"`
	Countries  []string `json:"countries,omitempty" validate:"dive,required"`
	IMDBVotes  int64    `json:"imdbVotes,omitempty" validate:"gte=0"`
	URL        string   `json:"url,omitempty" validate:"omitempty,url"`
	Revenue    int64    `json:"revenue,omitempty"`
	Poster     string   `json:"poster,omitempty" validate:"omitempty,url"`
	Budget     int64    `json:"budget,omitempty" validate:"gte=0"`
	Languages  []string `json:"languages,omitempty" validate:"dive,required"`
}

// PersonInput credits a person on a movie under the given roles.
type PersonInput struct {
	Name    string   `json:"name" validate:"required"`
	TMDBID  int64    `json:"tmdbId,omitempty" validate:"gte=0"`
	Born    string   `json:"born,omitempty"`
	BornIn  string   `json:"bornIn,omitempty"`
	URL     string   `json:"url,omitempty"`
	IMDBID  string   `json:"imdbId,omitempty"`
	Bio     string   `json:"bio,omitempty"`
	Poster  string   `json:"poster,omitempty"`
	Died    *string  `json:"died,omitempty"`
	MovieID int64    `json:"movieId" validate:"gt=0"`
	Roles   []string `json:"roles" validate:"dive,required"`
}

// RatingInput rates a movie on behalf of a user. A nil Timestamp is replaced
// with the current time; an explicit 0 is kept.
type RatingInput struct {
	UserID    string `json:"userId" validate:"required"`
	MovieID   int64  `json:"movieId" validate:"gt=0"`
	Rating    int    `json:"rating" validate:"gte=0,lte=5"`
	Timestamp *int64 `json:"timestamp,omitempty" validate:"omitempty,gte=0"`
}

// SeedReport summarises a Seed run. Per-phase counts are items attempted;
// Failed counts the ones that returned an error.
type SeedReport struct {
	Users   int `json:"users"`
	Movies  int `json:"movies"`
	People  int `json:"people"`
	Ratings int `json:"ratings"`
	Failed  int `json:"failed"`
}

func (in MovieInput) toDomain() domain.Movie {
	return domain.Movie{
		MovieID:    in.MovieID,
		Title:      in.Title,
		Year:       in.Year,
		Plot:       in.Plot,
		TMDBID:     in.TMDBID,
		Released:   in.Released,
		IMDBRating: in.IMDBRating,
		Runtime:    in.Runtime,
		Countries:  in.Countries,
		IMDBVotes:  in.IMDBVotes,
		URL:        in.URL,
		Revenue:    in.Revenue,
		Poster:     in.Poster,
		Budget:     in.Budget,
		Languages:  in.Languages,
	}
}

func (in PersonInput) toDomain() domain.Person {
	return domain.Person{
		Name:   in.Name,
		TMDBID: in.TMDBID,
		Born:   in.Born,
		BornIn: in.BornIn,
		URL:    in.URL,
		IMDBID: in.IMDBID,
		Bio:    in.Bio,
		Poster: in.Poster,
		Died:   in.Died,
	}
}

// MovieInputFrom converts a stored movie back into an input payload.
func MovieInputFrom(m domain.Movie) MovieInput {
	return MovieInput{
		MovieID:    m.MovieID,
		Title:      m.Title,
		Year:       m.Year,
		Plot:       m.Plot,
		TMDBID:     m.TMDBID,
		Released:   m.Released,
		IMDBRating: m.IMDBRating,
		Runtime:    m.Runtime,
		Countries:  m.Countries,
		IMDBVotes:  m.IMDBVotes,
		URL:        m.URL,
		Revenue:    m.Revenue,
		Poster:     m.Poster,
		Budget:     m.Budget,
		Languages:  m.Languages,
	}
}

// PersonInputFrom builds a credit payload for person on movieID.
func PersonInputFrom(p domain.Person, movieID int64, roles []string) PersonInput {
	return PersonInput{
		Name:    p.Name,
		TMDBID:  p.TMDBID,
		Born:    p.Born,
		BornIn:  p.BornIn,
		URL:     p.URL,
		IMDBID:  p.IMDBID,
		Bio:     p.Bio,
		Poster:  p.Poster,
		Died:    p.Died,
		MovieID: movieID,
		Roles:   roles,
	}
}
