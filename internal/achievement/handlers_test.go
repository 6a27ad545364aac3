package achievement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDataset returns canned counts for each query.
type fakeDataset struct {
	ratingCount     int64
	genreCounts     map[string]int64
	commentCount    int64
	distinctGenres  int64
	contrarianCount int64
	movieAverages   map[int64]float64
}

func (f *fakeDataset) CountRatingsByUser(ctx context.Context, userID int64) (int64, error) {
	return f.ratingCount, nil
}

func (f *fakeDataset) CountRatingsByUserAndGenre(ctx context.Context, userID int64, genre string) (int64, error) {
	return f.genreCounts[genre], nil
}

func (f *fakeDataset) CountRatingsWithCommentByUser(ctx context.Context, userID int64) (int64, error) {
	return f.commentCount, nil
}

func (f *fakeDataset) CountDistinctGenresRatedByUser(ctx context.Context, userID int64) (int64, error) {
	return f.distinctGenres, nil
}

func (f *fakeDataset) CountContrarianRatings(ctx context.Context, userID int64, minScore int, maxAvg float64) (int64, error) {
	return f.contrarianCount, nil
}

func (f *fakeDataset) MeanScoreForMovie(ctx context.Context, movieID int64) (float64, error) {
	return f.movieAverages[movieID], nil
}

func TestReviewCountHandler(t *testing.T) {
	ctx := context.Background()
	data := &fakeDataset{ratingCount: 5}
	handler := ReviewCountHandler{}

	tests := []struct {
		name      string
		threshold int
		want      bool
	}{
		{"below threshold", 6, false},
		{"exactly at threshold", 5, true},
		{"above threshold", 4, true},
		{"zero threshold", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := handler.Evaluate(ctx, 1, Params{"threshold": tt.threshold}, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReviewCountHandlerBoundary(t *testing.T) {
	ctx := context.Background()
	handler := ReviewCountHandler{}
	params := Params{"threshold": 5}

	got, err := handler.Evaluate(ctx, 1, params, &fakeDataset{ratingCount: 4})
	require.NoError(t, err)
	assert.False(t, got, "4 ratings must not satisfy threshold 5")

	got, err = handler.Evaluate(ctx, 1, params, &fakeDataset{ratingCount: 5})
	require.NoError(t, err)
	assert.True(t, got, "exactly 5 ratings must satisfy threshold 5")
}

func TestGenreMasterHandler(t *testing.T) {
	ctx := context.Background()
	data := &fakeDataset{genreCounts: map[string]int64{"horror": 5}}
	handler := GenreMasterHandler{}

	tests := []struct {
		name   string
		params Params
		want   bool
	}{
		{"met", Params{"genre": "horror", "threshold": 5}, true},
		{"not met", Params{"genre": "horror", "threshold": 6}, false},
		{"other genre", Params{"genre": "drama", "threshold": 1}, false},
		{"missing genre param", Params{"threshold": 1}, false},
		{"empty genre param", Params{"genre": "", "threshold": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := handler.Evaluate(ctx, 1, tt.params, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommentCountHandler(t *testing.T) {
	ctx := context.Background()
	handler := CommentCountHandler{}

	got, err := handler.Evaluate(ctx, 1, Params{"threshold": 1}, &fakeDataset{commentCount: 1})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = handler.Evaluate(ctx, 1, Params{"threshold": 2}, &fakeDataset{commentCount: 1})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDistinctGenreHandler(t *testing.T) {
	ctx := context.Background()
	handler := DistinctGenreHandler{}
	data := &fakeDataset{distinctGenres: 3}

	got, err := handler.Evaluate(ctx, 1, Params{"threshold": 3}, data)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = handler.Evaluate(ctx, 1, Params{"threshold": 4}, data)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestContrarianHandler(t *testing.T) {
	ctx := context.Background()
	handler := ContrarianHandler{}
	params := Params{"min_user_rating": 10, "max_movie_avg": 5.0, "threshold": 1}

	got, err := handler.Evaluate(ctx, 1, params, &fakeDataset{contrarianCount: 1})
	require.NoError(t, err)
	assert.True(t, got, "one qualifying rating must satisfy threshold 1")

	got, err = handler.Evaluate(ctx, 1, params, &fakeDataset{contrarianCount: 0})
	require.NoError(t, err)
	assert.False(t, got, "no qualifying ratings must not satisfy threshold 1")
}

func TestParamsDecodedFromJSON(t *testing.T) {
	// JSON numbers decode into float64; handlers must still read thresholds.
	params := Params{"threshold": float64(5), "max_movie_avg": float64(4.5), "genre": "horror"}

	threshold, ok := params.Int("threshold")
	require.True(t, ok)
	assert.Equal(t, 5, threshold)

	avg, ok := params.Float("max_movie_avg")
	require.True(t, ok)
	assert.InDelta(t, 4.5, avg, 0.0001)

	genre, ok := params.String("genre")
	require.True(t, ok)
	assert.Equal(t, "horror", genre)

	_, ok = params.Int("missing")
	assert.False(t, ok)
}
