// Package achievement implements the achievement rule engine: a set of named
// condition handlers dispatched by kind, and an evaluator that grants
// achievements to users as their rating history satisfies catalog conditions.
package achievement

import "context"

// Params carries an achievement's condition parameters as decoded from JSON.
// Handlers read only the keys they understand; missing or mistyped keys fall
// back to zero values so a misconfigured catalog entry evaluates to false
// instead of failing.
type Params map[string]any

// Int reads an integer parameter. JSON numbers decode as float64, so both
// representations are accepted.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Float reads a floating-point parameter.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// String reads a string parameter.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Dataset is the read-only query capability handlers evaluate against. It is
// scoped to counting a single user's ratings and joining them to movie data;
// handlers never mutate state through it.
type Dataset interface {
	CountRatingsByUser(ctx context.Context, userID int64) (int64, error)
	CountRatingsByUserAndGenre(ctx context.Context, userID int64, genre string) (int64, error)
	CountRatingsWithCommentByUser(ctx context.Context, userID int64) (int64, error)
	CountDistinctGenresRatedByUser(ctx context.Context, userID int64) (int64, error)
	CountContrarianRatings(ctx context.Context, userID int64, minScore int, maxAvg float64) (int64, error)
	MeanScoreForMovie(ctx context.Context, movieID int64) (float64, error)
}

// Handler evaluates one achievement condition kind. Implementations are pure
// reads: calling Evaluate repeatedly with the same inputs yields the same
// answer, and concurrent calls are safe.
type Handler interface {
	Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error)
}
