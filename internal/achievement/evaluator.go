package achievement

import (
	"context"
	"log"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// Catalog is the persistence contract for achievement definitions and grants.
// GrantAchievement must be idempotent: granting an already-held achievement is
// a no-op, which lets a uniqueness constraint absorb concurrent evaluations.
type Catalog interface {
	ListAchievements(ctx context.Context) ([]domain.Achievement, error)
	GrantedAchievementIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	GrantAchievement(ctx context.Context, userID, achievementID int64) (domain.AchievementGrant, error)
	GrantsWithDetails(ctx context.Context, userID int64) ([]domain.EarnedAchievement, error)
}

// Evaluator decides, after a rating mutation, whether a user has newly
// qualified for catalog achievements, and persists the grants.
type Evaluator struct {
	catalog  Catalog
	data     Dataset
	registry *Registry
	logger   *log.Logger
}

// NewEvaluator wires the evaluator to its collaborators.
func NewEvaluator(catalog Catalog, data Dataset, registry *Registry, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}
	return &Evaluator{catalog: catalog, data: data, registry: registry, logger: logger}
}

// CheckNewAchievements evaluates every not-yet-earned catalog achievement for
// the user and persists a grant for each satisfied condition. It returns the
// newly granted achievements in catalog order; every returned achievement has
// been durably persisted. Achievements with an unregistered condition kind are
// skipped, never failed. Calling twice with no intervening data change returns
// an empty slice on the second call.
func (e *Evaluator) CheckNewAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	all, err := e.catalog.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	granted, err := e.catalog.GrantedAchievementIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	newlyEarned := make([]domain.Achievement, 0)
	for _, ach := range all {
		if _, ok := granted[ach.ID]; ok {
			continue
		}

		handler, ok := e.registry.Get(ach.ConditionKind)
		if !ok {
			e.logger.Printf("achievement: no handler for condition kind %q, skipping %q", ach.ConditionKind, ach.Name)
			continue
		}

		satisfied, err := handler.Evaluate(ctx, userID, Params(ach.ConditionParams), e.data)
		if err != nil {
			return nil, err
		}
		if !satisfied {
			continue
		}

		if _, err := e.catalog.GrantAchievement(ctx, userID, ach.ID); err != nil {
			return nil, err
		}
		e.logger.Printf("achievement: user %d earned %q", userID, ach.Name)
		newlyEarned = append(newlyEarned, ach)
	}

	return newlyEarned, nil
}

// Earned returns the achievements the user holds, with earn timestamps.
func (e *Evaluator) Earned(ctx context.Context, userID int64) ([]domain.EarnedAchievement, error) {
	return e.catalog.GrantsWithDetails(ctx, userID)
}

// Status reports every catalog achievement with the user's earned flag and,
// when earned, the grant timestamp. Pure read.
func (e *Evaluator) Status(ctx context.Context, userID int64) ([]domain.AchievementStatus, error) {
	all, err := e.catalog.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := e.catalog.GrantsWithDetails(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedAt := make(map[int64]domain.EarnedAchievement, len(earned))
	for _, ea := range earned {
		earnedAt[ea.ID] = ea
	}

	statuses := make([]domain.AchievementStatus, 0, len(all))
	for _, ach := range all {
		status := domain.AchievementStatus{
			ID:          ach.ID,
			Name:        ach.Name,
			Description: ach.Description,
		}
		if ea, ok := earnedAt[ach.ID]; ok {
			ts := ea.EarnedAt
			status.Earned = true
			status.EarnedAt = &ts
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
