package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vanshika/moviegraph/internal/apperr"
	"github.com/vanshika/moviegraph/internal/repository"
	"github.com/vanshika/moviegraph/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *zap.Logger
	service *service.CatalogService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *zap.Logger, svc *service.CatalogService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	user, found, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *APIHandlers) getMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := parseMovieID(w, chi.URLParam(r, "movieId"))
	if !ok {
		return
	}

	movie, found, err := h.service.GetMovie(r.Context(), movieID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	respondJSON(w, http.StatusOK, movie)
}

func (h *APIHandlers) getUserRating(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	movieID, ok := parseMovieID(w, chi.URLParam(r, "movieId"))
	if !ok {
		return
	}

	rating, found, err := h.service.GetUserRating(r.Context(), userID, movieID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "rating not found")
		return
	}
	respondJSON(w, http.StatusOK, rating)
}

func (h *APIHandlers) createUser(w http.ResponseWriter, r *http.Request) {
	var input service.UserInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	user, err := h.service.CreateUser(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *APIHandlers) createMovie(w http.ResponseWriter, r *http.Request) {
	var input service.MovieInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	movie, err := h.service.CreateMovie(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movie)
}

func (h *APIHandlers) addPerson(w http.ResponseWriter, r *http.Request) {
	var input service.PersonInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	person, err := h.service.AddPerson(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

func (h *APIHandlers) rateMovie(w http.ResponseWriter, r *http.Request) {
	var input service.RatingInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	rating, err := h.service.RateMovie(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rating)
}

// writeServiceError maps error kinds onto status codes. A write that points
// at a missing node is reported as 404 rather than a generic query failure.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrMovieNotFound), errors.Is(err, repository.ErrRatingEndpointsNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case apperr.IsConnection(err):
		h.logger.Error("graph store unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "graph store unavailable")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseMovieID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "movieId must be an integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
