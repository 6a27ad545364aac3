package domain

import "time"

// Achievement is a catalog-defined condition a user can satisfy once.
// ConditionKind selects the handler that evaluates the predicate;
// ConditionParams is an opaque key/value mapping interpreted only by that
// handler. The catalog is seeded out of band and read-only at runtime.
type Achievement struct {
	ID              int64
	Name            string
	Description     string
	ConditionKind   string
	ConditionParams map[string]any
	IconURL         *string
}

// AchievementGrant is the durable record that a user satisfied an achievement.
// The (UserID, AchievementID) pair is unique: a user earns a given achievement
// at most once. Grants are never mutated or deleted by the application.
type AchievementGrant struct {
	ID            int64
	UserID        int64
	AchievementID int64
	EarnedAt      time.Time
}

// EarnedAchievement pairs an achievement with the moment the user earned it.
type EarnedAchievement struct {
	Achievement
	EarnedAt time.Time
}

// AchievementStatus reports, for one catalog achievement, whether a user holds
// a grant for it.
type AchievementStatus struct {
	ID          int64
	Name        string
	Description string
	Earned      bool
	EarnedAt    *time.Time
}
