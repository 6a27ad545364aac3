package achievement

import "context"

// Built-in condition kinds.
const (
	KindCountReviews  = "COUNT_REVIEWS"
	KindGenreMaster   = "GENRE_MASTER"
	KindCommentCount  = "COMMENT_COUNT"
	KindDistinctGenre = "DISTINCT_GENRE"
	KindContrarian    = "CONTRARIAN"
)

// ReviewCountHandler satisfies when the user has authored at least
// params.threshold ratings.
type ReviewCountHandler struct{}

func (ReviewCountHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	threshold, _ := params.Int("threshold")
	count, err := data.CountRatingsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}

// GenreMasterHandler satisfies when the user has rated at least
// params.threshold movies of params.genre. A missing genre never matches.
type GenreMasterHandler struct{}

func (GenreMasterHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	genre, ok := params.String("genre")
	if !ok || genre == "" {
		return false, nil
	}
	threshold, _ := params.Int("threshold")
	count, err := data.CountRatingsByUserAndGenre(ctx, userID, genre)
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}

// CommentCountHandler satisfies when the user has authored at least
// params.threshold ratings carrying a non-empty comment.
type CommentCountHandler struct{}

func (CommentCountHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	threshold, _ := params.Int("threshold")
	count, err := data.CountRatingsWithCommentByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}

// DistinctGenreHandler satisfies when the user has rated movies spanning at
// least params.threshold distinct genres.
type DistinctGenreHandler struct{}

func (DistinctGenreHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	threshold, _ := params.Int("threshold")
	count, err := data.CountDistinctGenresRatedByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}

// ContrarianHandler satisfies when the user has at least params.threshold
// ratings of params.min_user_rating or higher on movies whose average rating
// sits below params.max_movie_avg. The movie average seen here is the
// post-mutation value: the aggregate is recomputed before evaluation runs, so
// the user's own rating is already included.
type ContrarianHandler struct{}

func (ContrarianHandler) Evaluate(ctx context.Context, userID int64, params Params, data Dataset) (bool, error) {
	minScore, _ := params.Int("min_user_rating")
	maxAvg, _ := params.Float("max_movie_avg")
	threshold, _ := params.Int("threshold")
	count, err := data.CountContrarianRatings(ctx, userID, minScore, maxAvg)
	if err != nil {
		return false, err
	}
	return count >= int64(threshold), nil
}
