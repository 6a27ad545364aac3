package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vlad88855/cinetrack/internal/cache"
	"github.com/vlad88855/cinetrack/internal/domain"
	"github.com/vlad88855/cinetrack/internal/rating"
	"github.com/vlad88855/cinetrack/internal/repository"
)

type ratingCreateRequest struct {
	UserID  int64  `json:"userId"`
	MovieID int64  `json:"movieId"`
	Score   *int   `json:"score"`
	Comment string `json:"comment"`
}

type ratingUpdateRequest struct {
	Score   *int    `json:"score"`
	Comment *string `json:"comment"`
}

type ratingResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	MovieID   int64     `json:"movieId"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ratingMutationResponse struct {
	Rating          ratingResponse        `json:"rating"`
	NewAchievements []achievementResponse `json:"newAchievements"`
}

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	var req ratingCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if req.UserID <= 0 || req.MovieID <= 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "userId and movieId are required")
		return
	}
	if req.Score == nil || !domain.ValidScore(*req.Score) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			fmt.Sprintf("score must be an integer between %d and %d", domain.MinScore, domain.MaxScore))
		return
	}

	created, earned, err := s.ratings.Create(r.Context(), rating.CreateParams{
		UserID:  req.UserID,
		MovieID: req.MovieID,
		Score:   *req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Referenced user or movie not found")
		case errors.Is(err, repository.ErrConflict):
			s.respondError(w, http.StatusConflict, "CONFLICT", "User already rated this movie")
		default:
			s.logger.Printf("create rating error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create rating")
		}
		return
	}

	s.invalidateRatingCaches(r)
	s.respondJSON(w, http.StatusCreated, toRatingMutationResponse(created, earned))
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	fetched, err := s.ratings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("get rating error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch rating")
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingResponse(fetched))
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.ratings.List(r.Context())
	if err != nil {
		s.logger.Printf("list ratings error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list ratings")
		return
	}

	items := make([]ratingResponse, 0, len(ratings))
	for _, rt := range ratings {
		items = append(items, toRatingResponse(rt))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Score == nil && req.Comment == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "score or comment is required")
		return
	}
	if req.Score != nil && !domain.ValidScore(*req.Score) {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			fmt.Sprintf("score must be an integer between %d and %d", domain.MinScore, domain.MaxScore))
		return
	}

	updated, earned, err := s.ratings.Update(r.Context(), id, req.Score, req.Comment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("update rating error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update rating")
		return
	}

	s.invalidateRatingCaches(r)
	s.respondJSON(w, http.StatusOK, toRatingMutationResponse(updated, earned))
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.ratings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("delete rating error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete rating")
		return
	}

	s.invalidateRatingCaches(r)
	w.WriteHeader(http.StatusNoContent)
}

// Rating mutations move movie averages, so memoized movie listings go stale.
func (s *Server) invalidateRatingCaches(r *http.Request) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(r.Context(), cache.PrefixMovies); err != nil {
		s.logger.Printf("rating cache invalidation: %v", err)
	}
}

func toRatingResponse(rt domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        rt.ID,
		UserID:    rt.UserID,
		MovieID:   rt.MovieID,
		Score:     rt.Score,
		Comment:   rt.Comment,
		CreatedAt: rt.CreatedAt,
		UpdatedAt: rt.UpdatedAt,
	}
}

func toRatingMutationResponse(rt domain.Rating, earned []domain.Achievement) ratingMutationResponse {
	achievements := make([]achievementResponse, 0, len(earned))
	for _, ach := range earned {
		achievements = append(achievements, toAchievementResponse(ach))
	}
	return ratingMutationResponse{
		Rating:          toRatingResponse(rt),
		NewAchievements: achievements,
	}
}
