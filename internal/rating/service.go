// Package rating orchestrates rating mutations: reference validation, the
// persisted write with its aggregate refresh, then achievement evaluation.
package rating

import (
	"context"
	"log"

	"github.com/vlad88855/cinetrack/internal/domain"
	"github.com/vlad88855/cinetrack/internal/repository"
)

// ratingStore is the slice of the ratings repository the service drives.
type ratingStore interface {
	Create(ctx context.Context, params repository.RatingCreateParams) (domain.Rating, error)
	Update(ctx context.Context, id int64, params repository.RatingUpdateParams) (domain.Rating, error)
	Delete(ctx context.Context, id int64) (domain.Rating, error)
	Get(ctx context.Context, id int64) (domain.Rating, error)
	List(ctx context.Context) ([]domain.Rating, error)
}

type userStore interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

type movieStore interface {
	GetByID(ctx context.Context, id int64) (domain.Movie, error)
}

// achievementEvaluator grants any achievements the mutation newly satisfied.
type achievementEvaluator interface {
	CheckNewAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error)
}

// Service owns the rating mutation flow. Every mutation persists the rating
// together with the movie's recomputed average (one transaction inside the
// store), then runs achievement evaluation for the affected user, so
// evaluation always sees the post-mutation aggregate.
type Service struct {
	ratings   ratingStore
	users     userStore
	movies    movieStore
	evaluator achievementEvaluator
	logger    *log.Logger
}

// NewService wires the rating service to its collaborators.
func NewService(ratings ratingStore, users userStore, movies movieStore, evaluator achievementEvaluator, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{ratings: ratings, users: users, movies: movies, evaluator: evaluator, logger: logger}
}

// CreateParams is the validated payload for a new rating.
type CreateParams struct {
	UserID  int64
	MovieID int64
	Score   int
	Comment string
}

// Create validates the referenced user and movie, persists the rating with its
// aggregate refresh, and returns the rating along with any achievements the
// user newly earned.
func (s *Service) Create(ctx context.Context, params CreateParams) (domain.Rating, []domain.Achievement, error) {
	if _, err := s.users.GetByID(ctx, params.UserID); err != nil {
		return domain.Rating{}, nil, err
	}
	if _, err := s.movies.GetByID(ctx, params.MovieID); err != nil {
		return domain.Rating{}, nil, err
	}

	rating, err := s.ratings.Create(ctx, repository.RatingCreateParams{
		UserID:  params.UserID,
		MovieID: params.MovieID,
		Score:   params.Score,
		Comment: params.Comment,
	})
	if err != nil {
		return domain.Rating{}, nil, err
	}

	earned, err := s.evaluator.CheckNewAchievements(ctx, params.UserID)
	if err != nil {
		return domain.Rating{}, nil, err
	}
	return rating, earned, nil
}

// Update changes a rating's score and/or comment, then re-evaluates the user's
// achievements against the refreshed aggregate.
func (s *Service) Update(ctx context.Context, id int64, score *int, comment *string) (domain.Rating, []domain.Achievement, error) {
	rating, err := s.ratings.Update(ctx, id, repository.RatingUpdateParams{Score: score, Comment: comment})
	if err != nil {
		return domain.Rating{}, nil, err
	}

	earned, err := s.evaluator.CheckNewAchievements(ctx, rating.UserID)
	if err != nil {
		return domain.Rating{}, nil, err
	}
	return rating, earned, nil
}

// Delete removes a rating. The movie's average refreshes in the delete
// transaction; evaluation still runs since averages elsewhere may now qualify
// the user for a condition they previously missed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rating, err := s.ratings.Delete(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.evaluator.CheckNewAchievements(ctx, rating.UserID); err != nil {
		return err
	}
	return nil
}

// Get retrieves a rating by id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Rating, error) {
	return s.ratings.Get(ctx, id)
}

// List returns all ratings.
func (s *Service) List(ctx context.Context) ([]domain.Rating, error) {
	return s.ratings.List(ctx)
}
