package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// RatingsRepository provides helpers for user ratings. Mutations run in a
// transaction that locks the movie row and recomputes its average rating
// before committing, so concurrent writes on the same movie serialize and no
// caller ever observes a stale aggregate after its own mutation returns.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `id, user_id, movie_id, score, comment, created_at, updated_at`

// RatingCreateParams captures the payload required to create a rating.
type RatingCreateParams struct {
	UserID  int64
	MovieID int64
	Score   int
	Comment string
}

// RatingUpdateParams carries optional replacement fields for a rating.
type RatingUpdateParams struct {
	Score   *int
	Comment *string
}

// Create inserts a rating row and refreshes the movie's average in the same
// transaction. A second rating for the same (user, movie) yields ErrConflict;
// an unknown movie yields ErrNotFound.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("begin rating create: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockMovie(ctx, tx, params.MovieID); err != nil {
		return domain.Rating{}, err
	}

	query := `
        INSERT INTO ratings (user_id, movie_id, score, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING ` + ratingColumns

	rating, err := scanRating(tx.QueryRow(ctx, query, params.UserID, params.MovieID, params.Score, params.Comment))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Rating{}, ErrConflict
		}
		return domain.Rating{}, err
	}

	if err := refreshMovieAverage(ctx, tx, params.MovieID); err != nil {
		return domain.Rating{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, fmt.Errorf("commit rating create: %w", err)
	}
	return rating, nil
}

// Update changes a rating's score and/or comment and refreshes the movie's
// average in the same transaction.
func (r *RatingsRepository) Update(ctx context.Context, id int64, params RatingUpdateParams) (domain.Rating, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("begin rating update: %w", err)
	}
	defer tx.Rollback(ctx)

	movieID, err := movieIDForRating(ctx, tx, id)
	if err != nil {
		return domain.Rating{}, err
	}
	if err := lockMovie(ctx, tx, movieID); err != nil {
		return domain.Rating{}, err
	}

	query := `
        UPDATE ratings
        SET score = COALESCE($2, score),
            comment = COALESCE($3, comment),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + ratingColumns

	rating, err := scanRating(tx.QueryRow(ctx, query, id, params.Score, params.Comment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}

	if err := refreshMovieAverage(ctx, tx, movieID); err != nil {
		return domain.Rating{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, fmt.Errorf("commit rating update: %w", err)
	}
	return rating, nil
}

// Delete removes a rating and refreshes the movie's average in the same
// transaction. Returns the deleted rating so callers know whose history changed.
func (r *RatingsRepository) Delete(ctx context.Context, id int64) (domain.Rating, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("begin rating delete: %w", err)
	}
	defer tx.Rollback(ctx)

	movieID, err := movieIDForRating(ctx, tx, id)
	if err != nil {
		return domain.Rating{}, err
	}
	if err := lockMovie(ctx, tx, movieID); err != nil {
		return domain.Rating{}, err
	}

	rating, err := scanRating(tx.QueryRow(ctx, `DELETE FROM ratings WHERE id = $1 RETURNING `+ratingColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}

	if err := refreshMovieAverage(ctx, tx, movieID); err != nil {
		return domain.Rating{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Rating{}, fmt.Errorf("commit rating delete: %w", err)
	}
	return rating, nil
}

// Get retrieves a rating by identifier.
func (r *RatingsRepository) Get(ctx context.Context, id int64) (domain.Rating, error) {
	rating, err := scanRating(r.pool.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// FindByUserMovie retrieves the rating a user gave a movie, if any.
func (r *RatingsRepository) FindByUserMovie(ctx context.Context, userID, movieID int64) (domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND movie_id = $2`
	rating, err := scanRating(r.pool.QueryRow(ctx, query, userID, movieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// List returns all ratings ordered by id.
func (r *RatingsRepository) List(ctx context.Context) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ratingColumns+` FROM ratings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

// lockMovie takes a row lock on the movie so that concurrent rating mutations
// for the same movie serialize their read-recompute-write sequence.
func lockMovie(ctx context.Context, tx pgx.Tx, movieID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM movies WHERE id = $1 FOR UPDATE`, movieID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock movie %d: %w", movieID, err)
	}
	return nil
}

func movieIDForRating(ctx context.Context, tx pgx.Tx, ratingID int64) (int64, error) {
	var movieID int64
	err := tx.QueryRow(ctx, `SELECT movie_id FROM ratings WHERE id = $1`, ratingID).Scan(&movieID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return movieID, nil
}

// refreshMovieAverage recomputes the movie's average rating from scratch.
// A full scan-and-average instead of an incremental running mean: the stored
// value always equals the mean of the current rating rows, 0.0 when none remain.
func refreshMovieAverage(ctx context.Context, tx pgx.Tx, movieID int64) error {
	query := `
        UPDATE movies
        SET average_rating = (
            SELECT COALESCE(AVG(score), 0)::float8 FROM ratings WHERE movie_id = $1
        ),
            updated_at = now()
        WHERE id = $1
    `
	if _, err := tx.Exec(ctx, query, movieID); err != nil {
		return fmt.Errorf("refresh average for movie %d: %w", movieID, err)
	}
	return nil
}

// Aggregate returns the rating average and count for a movie.
func (r *RatingsRepository) Aggregate(ctx context.Context, movieID int64) (domain.RatingAggregate, error) {
	query := `
        SELECT COALESCE(AVG(score), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE movie_id = $1
    `
	var agg domain.RatingAggregate
	if err := r.pool.QueryRow(ctx, query, movieID).Scan(&agg.Average, &agg.Count); err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return agg, nil
}

// The methods below implement the read-only dataset the achievement handlers
// evaluate against.

// CountRatingsByUser returns the total number of ratings a user authored.
func (r *RatingsRepository) CountRatingsByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CountRatingsByUserAndGenre counts a user's ratings on movies of one genre.
func (r *RatingsRepository) CountRatingsByUserAndGenre(ctx context.Context, userID int64, genre string) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM ratings r
        JOIN movies m ON r.movie_id = m.id
        WHERE r.user_id = $1 AND m.genre = $2
    `
	var count int64
	err := r.pool.QueryRow(ctx, query, userID, genre).Scan(&count)
	return count, err
}

// CountRatingsWithCommentByUser counts a user's ratings carrying a non-empty comment.
func (r *RatingsRepository) CountRatingsWithCommentByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings WHERE user_id = $1 AND comment <> ''`, userID).Scan(&count)
	return count, err
}

// CountDistinctGenresRatedByUser counts the distinct genres among movies the user rated.
func (r *RatingsRepository) CountDistinctGenresRatedByUser(ctx context.Context, userID int64) (int64, error) {
	query := `
        SELECT COUNT(DISTINCT m.genre)
        FROM ratings r
        JOIN movies m ON r.movie_id = m.id
        WHERE r.user_id = $1
    `
	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// CountContrarianRatings counts the user's ratings of minScore or higher on
// movies whose current average rating sits below maxAvg.
func (r *RatingsRepository) CountContrarianRatings(ctx context.Context, userID int64, minScore int, maxAvg float64) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM ratings r
        JOIN movies m ON r.movie_id = m.id
        WHERE r.user_id = $1 AND r.score >= $2 AND m.average_rating < $3
    `
	var count int64
	err := r.pool.QueryRow(ctx, query, userID, minScore, maxAvg).Scan(&count)
	return count, err
}

// MeanScoreForMovie returns the arithmetic mean of a movie's current scores,
// 0.0 when it has none.
func (r *RatingsRepository) MeanScoreForMovie(ctx context.Context, movieID int64) (float64, error) {
	var mean float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(score), 0)::float8 FROM ratings WHERE movie_id = $1`, movieID).Scan(&mean)
	return mean, err
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
