package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vlad88855/cinetrack/internal/achievement"
	"github.com/vlad88855/cinetrack/internal/cache"
	"github.com/vlad88855/cinetrack/internal/config"
	httpserver "github.com/vlad88855/cinetrack/internal/http"
	"github.com/vlad88855/cinetrack/internal/rating"
	"github.com/vlad88855/cinetrack/internal/repository"
	"github.com/vlad88855/cinetrack/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[cinetrack] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	// The cache is an optimization; a missing redis must not block startup.
	var memo *cache.Cache
	if cfg.RedisAddr != "" {
		memo, err = cache.New(dbCtx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      time.Duration(cfg.CacheTTLSecs) * time.Second,
			Logger:   logger,
		})
		if err != nil {
			logger.Printf("redis unavailable, list memoization disabled: %v", err)
			memo = nil
		}
	}
	defer memo.Close()

	repo := repository.New(st)
	evaluator := achievement.NewEvaluator(repo.Achievements, repo.Ratings, achievement.NewRegistry(), logger)
	ratings := rating.NewService(repo.Ratings, repo.Users, repo.Movies, evaluator, logger)
	server := httpserver.New(cfg, st, repo, memo, ratings, evaluator, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
