package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vlad88855/cinetrack/internal/cache"
	"github.com/vlad88855/cinetrack/internal/domain"
	"github.com/vlad88855/cinetrack/internal/repository"
)

type movieCreateRequest struct {
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	ViewCount *int64 `json:"viewCount"`
}

type movieUpdateRequest struct {
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	ViewCount *int64 `json:"viewCount"`
}

type movieResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Year          int     `json:"year"`
	Genre         string  `json:"genre"`
	ViewCount     int64   `json:"viewCount"`
	AverageRating float64 `json:"averageRating"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := s.buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	// Plain genre/page listings are memoized; free-text search goes straight
	// to the database.
	cacheable := s.cache != nil && filters.Query == nil
	var cacheKey string
	if cacheable {
		genre := ""
		if filters.Genre != nil {
			genre = string(*filters.Genre)
		}
		cacheKey = cache.MovieListKey(genre, filters.Page, filters.Limit)

		var cached movieListResponse
		if err := s.cache.Get(r.Context(), cacheKey, &cached); err == nil {
			s.respondJSON(w, http.StatusOK, cached)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Printf("movie list cache read: %v", err)
		}
	}

	result, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, toMovieResponse(movie))
	}
	resp := movieListResponse{
		Items: items,
		Total: result.Total,
		Page:  filters.Page,
		Limit: filters.Limit,
	}

	if cacheable {
		if err := s.cache.Set(r.Context(), cacheKey, resp); err != nil {
			s.logger.Printf("movie list cache write: %v", err)
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	filters := repository.MovieListFilters{
		Page:  1,
		Limit: s.cfg.DefaultPageSize,
	}

	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		genre, err := domain.ParseGenre(val)
		if err != nil {
			return filters, fmt.Errorf("invalid genre value")
		}
		filters.Genre = &genre
	}
	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil || page <= 0 {
			return filters, fmt.Errorf("invalid page value")
		}
		filters.Page = page
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit <= 0 {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	return filters, nil
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	genre, msg := validateMoviePayload(req.Title, req.Year, req.Genre)
	if msg != "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	params := repository.MovieCreateParams{
		Title: strings.TrimSpace(req.Title),
		Year:  req.Year,
		Genre: genre,
	}
	if req.ViewCount != nil {
		if *req.ViewCount < 0 {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "viewCount must be non-negative")
			return
		}
		params.ViewCount = *req.ViewCount
	}

	movie, err := s.repo.Movies.Create(r.Context(), params)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "A movie with this title already exists")
			return
		}
		s.logger.Printf("create movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		return
	}

	s.invalidateMovieCache(r)
	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("get movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	genre, msg := validateMoviePayload(req.Title, req.Year, req.Genre)
	if msg != "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}
	if req.ViewCount != nil && *req.ViewCount < 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "viewCount must be non-negative")
		return
	}

	movie, err := s.repo.Movies.Update(r.Context(), id, repository.MovieUpdateParams{
		Title:     strings.TrimSpace(req.Title),
		Year:      req.Year,
		Genre:     genre,
		ViewCount: req.ViewCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		case errors.Is(err, repository.ErrConflict):
			s.respondError(w, http.StatusConflict, "CONFLICT", "A movie with this title already exists")
		default:
			s.logger.Printf("update movie error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update movie")
		}
		return
	}

	s.invalidateMovieCache(r)
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.repo.Movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("delete movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete movie")
		return
	}

	s.invalidateMovieCache(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.repo.Movies.IncrementViewCount(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("watch movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record view")
		return
	}

	s.invalidateMovieCache(r)
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) invalidateMovieCache(r *http.Request) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(r.Context(), cache.PrefixMovies); err != nil {
		s.logger.Printf("movie cache invalidation: %v", err)
	}
}

func validateMoviePayload(title string, year int, rawGenre string) (domain.Genre, string) {
	title = strings.TrimSpace(title)
	if len(title) < 3 || len(title) > 255 {
		return "", "title must be between 3 and 255 characters"
	}
	if year < 1900 || year > time.Now().Year() {
		return "", fmt.Sprintf("year must be between 1900 and %d", time.Now().Year())
	}
	genre, err := domain.ParseGenre(strings.TrimSpace(rawGenre))
	if err != nil {
		return "", "genre must be one of: fantastic, action, comedy, drama, horror, sci-fi, thriller"
	}
	return genre, ""
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:            movie.ID,
		Title:         movie.Title,
		Year:          movie.Year,
		Genre:         string(movie.Genre),
		ViewCount:     movie.ViewCount,
		AverageRating: roundToOneDecimal(movie.AverageRating),
	}
}
