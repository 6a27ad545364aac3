package achievement

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlad88855/cinetrack/internal/domain"
)

// fakeCatalog is an in-memory Catalog with idempotent grants.
type fakeCatalog struct {
	achievements []domain.Achievement
	grants       map[int64]map[int64]time.Time // userID -> achievementID -> earnedAt
	grantCalls   int
}

func newFakeCatalog(achievements ...domain.Achievement) *fakeCatalog {
	return &fakeCatalog{
		achievements: achievements,
		grants:       make(map[int64]map[int64]time.Time),
	}
}

func (f *fakeCatalog) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	return f.achievements, nil
}

func (f *fakeCatalog) GrantedAchievementIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for id := range f.grants[userID] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (f *fakeCatalog) GrantAchievement(ctx context.Context, userID, achievementID int64) (domain.AchievementGrant, error) {
	f.grantCalls++
	if f.grants[userID] == nil {
		f.grants[userID] = make(map[int64]time.Time)
	}
	earnedAt, ok := f.grants[userID][achievementID]
	if !ok {
		earnedAt = time.Now().UTC()
		f.grants[userID][achievementID] = earnedAt
	}
	return domain.AchievementGrant{UserID: userID, AchievementID: achievementID, EarnedAt: earnedAt}, nil
}

func (f *fakeCatalog) GrantsWithDetails(ctx context.Context, userID int64) ([]domain.EarnedAchievement, error) {
	var earned []domain.EarnedAchievement
	for _, ach := range f.achievements {
		if earnedAt, ok := f.grants[userID][ach.ID]; ok {
			earned = append(earned, domain.EarnedAchievement{Achievement: ach, EarnedAt: earnedAt})
		}
	}
	return earned, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestEvaluator(catalog Catalog, data Dataset) *Evaluator {
	return NewEvaluator(catalog, data, NewRegistry(), discardLogger())
}

func TestCheckNewAchievementsZeroRatings(t *testing.T) {
	catalog := newFakeCatalog(domain.Achievement{
		ID: 1, Name: "First Review", ConditionKind: KindCountReviews,
		ConditionParams: map[string]any{"threshold": 1},
	})
	evaluator := newTestEvaluator(catalog, &fakeDataset{})

	earned, err := evaluator.CheckNewAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestCheckNewAchievementsMultipleInOneCall(t *testing.T) {
	// One rating with a comment earns both COUNT_REVIEWS{1} and COMMENT_COUNT{1}.
	catalog := newFakeCatalog(
		domain.Achievement{
			ID: 1, Name: "First Review", ConditionKind: KindCountReviews,
			ConditionParams: map[string]any{"threshold": 1},
		},
		domain.Achievement{
			ID: 2, Name: "First Comment", ConditionKind: KindCommentCount,
			ConditionParams: map[string]any{"threshold": 1},
		},
	)
	evaluator := newTestEvaluator(catalog, &fakeDataset{ratingCount: 1, commentCount: 1})

	earned, err := evaluator.CheckNewAchievements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, earned, 2)
	assert.Equal(t, "First Review", earned[0].Name)
	assert.Equal(t, "First Comment", earned[1].Name)
	assert.Equal(t, 2, catalog.grantCalls, "each achievement granted exactly once")
}

func TestCheckNewAchievementsIdempotent(t *testing.T) {
	catalog := newFakeCatalog(domain.Achievement{
		ID: 1, Name: "Movie Buff", ConditionKind: KindCountReviews,
		ConditionParams: map[string]any{"threshold": 5},
	})
	evaluator := newTestEvaluator(catalog, &fakeDataset{ratingCount: 7})
	ctx := context.Background()

	first, err := evaluator.CheckNewAchievements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := evaluator.CheckNewAchievements(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, second, "second call with no data change must grant nothing")
}

func TestCheckNewAchievementsSkipsUnknownKind(t *testing.T) {
	catalog := newFakeCatalog(
		domain.Achievement{
			ID: 1, Name: "Experimental", ConditionKind: "NOT_YET_IMPLEMENTED",
			ConditionParams: map[string]any{},
		},
		domain.Achievement{
			ID: 2, Name: "Movie Buff", ConditionKind: KindCountReviews,
			ConditionParams: map[string]any{"threshold": 1},
		},
	)
	evaluator := newTestEvaluator(catalog, &fakeDataset{ratingCount: 3})

	earned, err := evaluator.CheckNewAchievements(context.Background(), 1)
	require.NoError(t, err, "unknown condition kind must not fail evaluation")
	require.Len(t, earned, 1)
	assert.Equal(t, "Movie Buff", earned[0].Name)
}

func TestCheckNewAchievementsEmptyCatalog(t *testing.T) {
	evaluator := newTestEvaluator(newFakeCatalog(), &fakeDataset{ratingCount: 100})

	earned, err := evaluator.CheckNewAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestCheckNewAchievementsContrarian(t *testing.T) {
	catalog := newFakeCatalog(domain.Achievement{
		ID: 1, Name: "Against the Grain", ConditionKind: KindContrarian,
		ConditionParams: map[string]any{"min_user_rating": 10, "max_movie_avg": 5.0, "threshold": 1},
	})

	// Rated 10 on a movie whose post-update average is below 5.0.
	evaluator := newTestEvaluator(catalog, &fakeDataset{contrarianCount: 1})
	earned, err := evaluator.CheckNewAchievements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	// No qualifying ratings.
	evaluator = newTestEvaluator(catalog, &fakeDataset{contrarianCount: 0})
	earned, err = evaluator.CheckNewAchievements(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestStatus(t *testing.T) {
	catalog := newFakeCatalog(
		domain.Achievement{
			ID: 1, Name: "Movie Buff", Description: "Rate 5 movies",
			ConditionKind: KindCountReviews, ConditionParams: map[string]any{"threshold": 5},
		},
		domain.Achievement{
			ID: 2, Name: "Cinema Addict", Description: "Rate 20 movies",
			ConditionKind: KindCountReviews, ConditionParams: map[string]any{"threshold": 20},
		},
	)
	evaluator := newTestEvaluator(catalog, &fakeDataset{ratingCount: 6})
	ctx := context.Background()

	earned, err := evaluator.CheckNewAchievements(ctx, 1)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	statuses, err := evaluator.Status(ctx, 1)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.True(t, statuses[0].Earned)
	require.NotNil(t, statuses[0].EarnedAt)
	assert.False(t, statuses[1].Earned)
	assert.Nil(t, statuses[1].EarnedAt)
}

func TestEarned(t *testing.T) {
	catalog := newFakeCatalog(domain.Achievement{
		ID: 1, Name: "Movie Buff", ConditionKind: KindCountReviews,
		ConditionParams: map[string]any{"threshold": 1},
	})
	evaluator := newTestEvaluator(catalog, &fakeDataset{ratingCount: 1})
	ctx := context.Background()

	_, err := evaluator.CheckNewAchievements(ctx, 1)
	require.NoError(t, err)

	earned, err := evaluator.Earned(ctx, 1)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "Movie Buff", earned[0].Name)
	assert.False(t, earned[0].EarnedAt.IsZero())
}
