package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/vlad88855/cinetrack/internal/domain"
	"github.com/vlad88855/cinetrack/internal/repository"
)

type achievementResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl,omitempty"`
}

type earnedAchievementResponse struct {
	achievementResponse
	EarnedAt time.Time `json:"earnedAt"`
}

type achievementStatusResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earnedAt,omitempty"`
}

func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.ensureUserExists(r, userID); err != nil {
		s.respondUserLookupError(w, err)
		return
	}

	earned, err := s.evaluator.Earned(r.Context(), userID)
	if err != nil {
		s.logger.Printf("list user achievements error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list achievements")
		return
	}

	items := make([]earnedAchievementResponse, 0, len(earned))
	for _, e := range earned {
		items = append(items, earnedAchievementResponse{
			achievementResponse: toAchievementResponse(e.Achievement),
			EarnedAt:            e.EarnedAt,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUserAchievementStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err := s.ensureUserExists(r, userID); err != nil {
		s.respondUserLookupError(w, err)
		return
	}

	statuses, err := s.evaluator.Status(r.Context(), userID)
	if err != nil {
		s.logger.Printf("achievement status error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch achievement status")
		return
	}

	items := make([]achievementStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		items = append(items, achievementStatusResponse{
			ID:          st.ID,
			Name:        st.Name,
			Description: st.Description,
			Earned:      st.Earned,
			EarnedAt:    st.EarnedAt,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) ensureUserExists(r *http.Request, userID int64) error {
	_, err := s.repo.Users.GetByID(r.Context(), userID)
	return err
}

func (s *Server) respondUserLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	s.logger.Printf("user lookup error: %v", err)
	s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch user")
}

func toAchievementResponse(a domain.Achievement) achievementResponse {
	return achievementResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		IconURL:     a.IconURL,
	}
}
