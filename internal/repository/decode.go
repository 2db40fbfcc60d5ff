package repository

import (
	"fmt"

	"github.com/vanshika/moviegraph/internal/domain"
)

func decodeUser(val any) domain.User {
	props, _ := val.(map[string]any)
	return domain.User{
		UserID: toString(props["userId"]),
		Name:   toString(props["name"]),
	}
}

func decodeMovie(val any) domain.Movie {
	props, _ := val.(map[string]any)
	return domain.Movie{
		MovieID:    toInt64(props["movieId"]),
		Title:      toString(props["title"]),
		Year:       int(toInt64(props["year"])),
		Plot:       toString(props["plot"]),
		TMDBID:     toInt64(props["tmdbId"]),
		Released:   toString(props["released"]),
		IMDBRating: toFloat64(props["imdbRating"]),
		Runtime:    int(toInt64(props["runtime"])),
		Countries:  toStringSlice(props["countries"]),
		IMDBVotes:  toInt64(props["imdbVotes"]),
		URL:        toString(props["url"]),
		Revenue:    toInt64(props["revenue"]),
		Poster:     toString(props["poster"]),
		Budget:     toInt64(props["budget"]),
		Languages:  toStringSlice(props["languages"]),
	}
}

func decodePerson(val any) domain.Person {
	props, _ := val.(map[string]any)
	p := domain.Person{
		Name:   toString(props["name"]),
		TMDBID: toInt64(props["tmdbId"]),
		Born:   toString(props["born"]),
		BornIn: toString(props["bornIn"]),
		URL:    toString(props["url"]),
		IMDBID: toString(props["imdbId"]),
		Bio:    toString(props["bio"]),
		Poster: toString(props["poster"]),
	}
	if died := toString(props["died"]); died != "" {
		p.Died = &died
	}
	return p
}

func decodeRating(val any) domain.Rating {
	props, _ := val.(map[string]any)
	return domain.Rating{
		Rating:    int(toInt64(props["rating"])),
		Timestamp: toInt64(props["timestamp"]),
	}
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
