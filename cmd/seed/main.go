// Command seed loads the built-in achievement catalog into the database.
// It is idempotent: achievements that already exist by name are left alone.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vlad88855/cinetrack/internal/achievement"
	"github.com/vlad88855/cinetrack/internal/repository"
)

var catalog = []repository.SeedParams{
	{
		Name:            "Movie Buff",
		Description:     "Rate 5 movies.",
		ConditionKind:   achievement.KindCountReviews,
		ConditionParams: map[string]any{"threshold": 5},
	},
	{
		Name:            "Cinema Addict",
		Description:     "Rate 20 movies.",
		ConditionKind:   achievement.KindCountReviews,
		ConditionParams: map[string]any{"threshold": 20},
	},
	{
		Name:            "Horror Fan",
		Description:     "Rate 5 horror movies.",
		ConditionKind:   achievement.KindGenreMaster,
		ConditionParams: map[string]any{"genre": "horror", "threshold": 5},
	},
	{
		Name:            "Thoughtful Critic",
		Description:     "Leave written comments on 10 ratings.",
		ConditionKind:   achievement.KindCommentCount,
		ConditionParams: map[string]any{"threshold": 10},
	},
	{
		Name:            "Genre Explorer",
		Description:     "Rate movies across 4 different genres.",
		ConditionKind:   achievement.KindDistinctGenre,
		ConditionParams: map[string]any{"threshold": 4},
	},
	{
		Name:            "Against the Grain",
		Description:     "Give 3 high scores to movies the crowd dislikes.",
		ConditionKind:   achievement.KindContrarian,
		ConditionParams: map[string]any{"min_user_rating": 8, "max_movie_avg": 4, "threshold": 3},
	},
}

func main() {
	dbURL := flag.String("db-url", os.Getenv("DB_URL"), "postgres connection string")
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("db-url flag or DB_URL env is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	repo := repository.NewWithPool(pool)

	var inserted, skipped int
	for _, params := range catalog {
		ok, err := repo.Achievements.CreateIfAbsent(ctx, params)
		if err != nil {
			log.Fatalf("seed %q: %v", params.Name, err)
		}
		if ok {
			inserted++
			log.Printf("created achievement %q (%s)", params.Name, params.ConditionKind)
		} else {
			skipped++
		}
	}
	log.Printf("done: %d created, %d already present", inserted, skipped)
}
