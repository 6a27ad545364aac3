package rating

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlad88855/cinetrack/internal/domain"
	"github.com/vlad88855/cinetrack/internal/repository"
)

type fakeRatings struct {
	ratings map[int64]domain.Rating
	nextID  int64
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{ratings: make(map[int64]domain.Rating), nextID: 1}
}

func (f *fakeRatings) Create(ctx context.Context, params repository.RatingCreateParams) (domain.Rating, error) {
	for _, r := range f.ratings {
		if r.UserID == params.UserID && r.MovieID == params.MovieID {
			return domain.Rating{}, repository.ErrConflict
		}
	}
	rating := domain.Rating{
		ID:      f.nextID,
		UserID:  params.UserID,
		MovieID: params.MovieID,
		Score:   params.Score,
		Comment: params.Comment,
	}
	f.ratings[f.nextID] = rating
	f.nextID++
	return rating, nil
}

func (f *fakeRatings) Update(ctx context.Context, id int64, params repository.RatingUpdateParams) (domain.Rating, error) {
	rating, ok := f.ratings[id]
	if !ok {
		return domain.Rating{}, repository.ErrNotFound
	}
	if params.Score != nil {
		rating.Score = *params.Score
	}
	if params.Comment != nil {
		rating.Comment = *params.Comment
	}
	f.ratings[id] = rating
	return rating, nil
}

func (f *fakeRatings) Delete(ctx context.Context, id int64) (domain.Rating, error) {
	rating, ok := f.ratings[id]
	if !ok {
		return domain.Rating{}, repository.ErrNotFound
	}
	delete(f.ratings, id)
	return rating, nil
}

func (f *fakeRatings) Get(ctx context.Context, id int64) (domain.Rating, error) {
	rating, ok := f.ratings[id]
	if !ok {
		return domain.Rating{}, repository.ErrNotFound
	}
	return rating, nil
}

func (f *fakeRatings) List(ctx context.Context) ([]domain.Rating, error) {
	out := make([]domain.Rating, 0, len(f.ratings))
	for _, r := range f.ratings {
		out = append(out, r)
	}
	return out, nil
}

type fakeUsers struct{ known map[int64]bool }

func (f fakeUsers) GetByID(ctx context.Context, id int64) (domain.User, error) {
	if !f.known[id] {
		return domain.User{}, repository.ErrNotFound
	}
	return domain.User{ID: id}, nil
}

type fakeMovies struct{ known map[int64]bool }

func (f fakeMovies) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	if !f.known[id] {
		return domain.Movie{}, repository.ErrNotFound
	}
	return domain.Movie{ID: id}, nil
}

type fakeEvaluator struct {
	calls   []int64
	granted []domain.Achievement
}

func (f *fakeEvaluator) CheckNewAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	f.calls = append(f.calls, userID)
	return f.granted, nil
}

func newTestService(evaluator *fakeEvaluator) (*Service, *fakeRatings) {
	ratings := newFakeRatings()
	users := fakeUsers{known: map[int64]bool{1: true}}
	movies := fakeMovies{known: map[int64]bool{10: true}}
	logger := log.New(io.Discard, "", 0)
	return NewService(ratings, users, movies, evaluator, logger), ratings
}

func TestCreateEvaluatesAchievements(t *testing.T) {
	evaluator := &fakeEvaluator{granted: []domain.Achievement{{ID: 1, Name: "First Review"}}}
	svc, _ := newTestService(evaluator)

	rating, earned, err := svc.Create(context.Background(), CreateParams{UserID: 1, MovieID: 10, Score: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, rating.Score)
	require.Len(t, earned, 1)
	assert.Equal(t, []int64{1}, evaluator.calls, "evaluation runs once, for the rating user")
}

func TestCreateUnknownUser(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, _ := newTestService(evaluator)

	_, _, err := svc.Create(context.Background(), CreateParams{UserID: 99, MovieID: 10, Score: 5})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, evaluator.calls, "no evaluation when the reference check fails")
}

func TestCreateUnknownMovie(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, _ := newTestService(evaluator)

	_, _, err := svc.Create(context.Background(), CreateParams{UserID: 1, MovieID: 99, Score: 5})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, evaluator.calls)
}

func TestCreateDuplicateRating(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, _ := newTestService(evaluator)
	ctx := context.Background()

	_, _, err := svc.Create(ctx, CreateParams{UserID: 1, MovieID: 10, Score: 5})
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, CreateParams{UserID: 1, MovieID: 10, Score: 7})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Len(t, evaluator.calls, 1, "failed create must not trigger evaluation")
}

func TestUpdateEvaluatesForRatingOwner(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, _ := newTestService(evaluator)
	ctx := context.Background()

	created, _, err := svc.Create(ctx, CreateParams{UserID: 1, MovieID: 10, Score: 5})
	require.NoError(t, err)

	score := 9
	updated, _, err := svc.Update(ctx, created.ID, &score, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
	assert.Equal(t, []int64{1, 1}, evaluator.calls)
}

func TestDeleteEvaluatesForRatingOwner(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, ratings := newTestService(evaluator)
	ctx := context.Background()

	created, _, err := svc.Create(ctx, CreateParams{UserID: 1, MovieID: 10, Score: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, ratings.ratings)
	assert.Equal(t, []int64{1, 1}, evaluator.calls)
}

func TestDeleteUnknownRating(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, _ := newTestService(evaluator)

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, evaluator.calls)
}
