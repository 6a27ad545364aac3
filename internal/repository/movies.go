package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    year,
    genre,
    view_count,
    average_rating,
    created_at,
    updated_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title     string
	Year      int
	Genre     domain.Genre
	ViewCount int64
}

// MovieUpdateParams carries the full replacement state for a movie. ViewCount
// is optional; the average rating is derived and cannot be set here.
type MovieUpdateParams struct {
	Title     string
	Year      int
	Genre     domain.Genre
	ViewCount *int64
}

// MovieListFilters encapsulates search and pagination options.
type MovieListFilters struct {
	Genre *domain.Genre
	Query *string
	Page  int
	Limit int
}

// MovieListResult returns the paginated payload.
type MovieListResult struct {
	Items []domain.Movie
	Total int64
}

// Create inserts a new movie row and returns the stored entity.
// A duplicate title (case-insensitive) yields ErrConflict.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, year, genre, view_count)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Year, string(params.Genre), params.ViewCount)
	movie, err := scanMovie(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Movie{}, ErrConflict
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Update replaces a movie's mutable fields. Renaming onto an existing title
// yields ErrConflict.
func (r *MoviesRepository) Update(ctx context.Context, id int64, params MovieUpdateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET title = $2,
            year = $3,
            genre = $4,
            view_count = COALESCE($5, view_count),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, id, params.Title, params.Year, string(params.Genre), params.ViewCount)
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.Movie{}, ErrConflict
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Delete removes a movie; its ratings cascade away.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViewCount bumps a movie's view counter by one.
func (r *MoviesRepository) IncrementViewCount(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET view_count = view_count + 1, updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns movies matching the provided filters with a total row count
// for pagination.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Genre != nil {
		where = append(where, fmt.Sprintf("genre = %s", arg(string(*filters.Genre))))
	}
	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg("%"+strings.TrimSpace(*filters.Query)+"%")))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM movies"+whereClause, args...).Scan(&total); err != nil {
		return MovieListResult{}, fmt.Errorf("count movies: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM movies%s ORDER BY id LIMIT %d OFFSET %d",
		movieColumns, whereClause, filters.Limit, (filters.Page-1)*filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return MovieListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	return MovieListResult{Items: items, Total: total}, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie domain.Movie
		genre string
	)
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Year,
		&genre,
		&movie.ViewCount,
		&movie.AverageRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	movie.Genre = domain.Genre(genre)
	return movie, nil
}
