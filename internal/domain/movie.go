package domain

import (
	"fmt"
	"strings"
	"time"
)

// Genre is the closed set of genres accepted by the movie catalog.
type Genre string

const (
	GenreFantastic Genre = "fantastic"
	GenreAction    Genre = "action"
	GenreComedy    Genre = "comedy"
	GenreDrama     Genre = "drama"
	GenreHorror    Genre = "horror"
	GenreSciFi     Genre = "sci-fi"
	GenreThriller  Genre = "thriller"
)

// Genres lists every accepted genre in a stable order.
var Genres = []Genre{
	GenreFantastic,
	GenreAction,
	GenreComedy,
	GenreDrama,
	GenreHorror,
	GenreSciFi,
	GenreThriller,
}

// ParseGenre validates a raw genre string against the accepted set.
// Matching is case-insensitive; the canonical lowercase form is returned.
func ParseGenre(raw string) (Genre, error) {
	normalized := strings.ToLower(raw)
	for _, g := range Genres {
		if string(g) == normalized {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre %q", raw)
}

// Movie represents the canonical movie entity in the database/service.
// AverageRating is derived from the movie's ratings; it is recomputed on every
// rating mutation and never set directly by a client.
type Movie struct {
	ID            int64
	Title         string
	Year          int
	Genre         Genre
	ViewCount     int64
	AverageRating float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
