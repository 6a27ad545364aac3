package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// UsersRepository provides persistence helpers for user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, username, email, password, created_at, updated_at`

// UserCreateParams bundles the fields required to register a user.
// PasswordHash must already be hashed; plaintext never reaches this layer.
type UserCreateParams struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserUpdateParams carries optional replacement fields for a user.
type UserUpdateParams struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// Create inserts a new user row. Duplicate username or email yields ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := `
        INSERT INTO users (username, email, password)
        VALUES ($1,$2,$3)
        RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, params.Username, params.Email, params.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Update applies the provided fields to a user row.
func (r *UsersRepository) Update(ctx context.Context, id int64, params UserUpdateParams) (domain.User, error) {
	query := `
        UPDATE users
        SET username = COALESCE($2, username),
            email = COALESCE($3, email),
            password = COALESCE($4, password),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, params.Username, params.Email, params.PasswordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// Delete removes a user; ratings and grants cascade away.
func (r *UsersRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by id.
func (r *UsersRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
