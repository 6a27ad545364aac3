package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// AchievementsRepository persists the achievement catalog and user grants.
// The catalog is written only by the seeder; grants are written only through
// Grant, whose uniqueness constraint makes it idempotent under races.
type AchievementsRepository struct {
	pool *pgxpool.Pool
}

const achievementColumns = `id, name, description, condition_kind, condition_params, icon_url`

// ListAchievements returns the full catalog in id order.
func (r *AchievementsRepository) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+achievementColumns+` FROM achievements ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := make([]domain.Achievement, 0)
	for rows.Next() {
		ach, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, ach)
	}
	return achievements, rows.Err()
}

// GrantedAchievementIDs returns the set of achievement ids the user holds.
func (r *AchievementsRepository) GrantedAchievementIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// GrantAchievement records that the user earned the achievement. Idempotent:
// when a concurrent evaluation already inserted the grant, the existing row is
// returned and no error is surfaced.
func (r *AchievementsRepository) GrantAchievement(ctx context.Context, userID, achievementID int64) (domain.AchievementGrant, error) {
	query := `
        INSERT INTO user_achievements (user_id, achievement_id)
        VALUES ($1,$2)
        ON CONFLICT (user_id, achievement_id) DO NOTHING
        RETURNING id, user_id, achievement_id, earned_at
    `
	grant, err := scanGrant(r.pool.QueryRow(ctx, query, userID, achievementID))
	if err == nil {
		return grant, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.AchievementGrant{}, fmt.Errorf("grant achievement %d to user %d: %w", achievementID, userID, err)
	}

	// Conflict path: the row already exists, fetch it.
	existing := `
        SELECT id, user_id, achievement_id, earned_at
        FROM user_achievements
        WHERE user_id = $1 AND achievement_id = $2
    `
	grant, err = scanGrant(r.pool.QueryRow(ctx, existing, userID, achievementID))
	if err != nil {
		return domain.AchievementGrant{}, fmt.Errorf("fetch existing grant: %w", err)
	}
	return grant, nil
}

// GrantsWithDetails returns the user's grants joined to their achievements,
// in grant order.
func (r *AchievementsRepository) GrantsWithDetails(ctx context.Context, userID int64) ([]domain.EarnedAchievement, error) {
	query := `
        SELECT a.id, a.name, a.description, a.condition_kind, a.condition_params, a.icon_url, ua.earned_at
        FROM user_achievements ua
        JOIN achievements a ON ua.achievement_id = a.id
        WHERE ua.user_id = $1
        ORDER BY ua.earned_at, a.id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make([]domain.EarnedAchievement, 0)
	for rows.Next() {
		var ea domain.EarnedAchievement
		err := rows.Scan(
			&ea.ID,
			&ea.Name,
			&ea.Description,
			&ea.ConditionKind,
			&ea.ConditionParams,
			&ea.IconURL,
			&ea.EarnedAt,
		)
		if err != nil {
			return nil, err
		}
		earned = append(earned, ea)
	}
	return earned, rows.Err()
}

// SeedParams describes one catalog entry for CreateIfAbsent.
type SeedParams struct {
	Name            string
	Description     string
	ConditionKind   string
	ConditionParams map[string]any
	IconURL         *string
}

// CreateIfAbsent inserts a catalog entry unless one with the same name exists.
// Returns true when a row was inserted.
func (r *AchievementsRepository) CreateIfAbsent(ctx context.Context, params SeedParams) (bool, error) {
	query := `
        INSERT INTO achievements (name, description, condition_kind, condition_params, icon_url)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (name) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query,
		params.Name, params.Description, params.ConditionKind, params.ConditionParams, params.IconURL)
	if err != nil {
		return false, fmt.Errorf("seed achievement %q: %w", params.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanAchievement(row pgx.Row) (domain.Achievement, error) {
	var ach domain.Achievement
	err := row.Scan(
		&ach.ID,
		&ach.Name,
		&ach.Description,
		&ach.ConditionKind,
		&ach.ConditionParams,
		&ach.IconURL,
	)
	if err != nil {
		return domain.Achievement{}, err
	}
	return ach, nil
}

func scanGrant(row pgx.Row) (domain.AchievementGrant, error) {
	var grant domain.AchievementGrant
	err := row.Scan(&grant.ID, &grant.UserID, &grant.AchievementID, &grant.EarnedAt)
	if err != nil {
		return domain.AchievementGrant{}, err
	}
	return grant, nil
}
