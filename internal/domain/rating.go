package domain

import "time"

// Rating score bounds (inclusive).
const (
	MinScore = 0
	MaxScore = 10
)

// Rating represents a single user's rating for a movie. The (UserID, MovieID)
// pair is unique: one rating per user per movie.
type Rating struct {
	ID        int64
	UserID    int64
	MovieID   int64
	Score     int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidScore reports whether the score falls in the accepted range.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// RatingAggregate provides average and count for a movie's ratings.
type RatingAggregate struct {
	Average float64
	Count   int64
}
