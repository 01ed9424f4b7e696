package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/steinarvk/brator/internal/auth"
	"github.com/steinarvk/brator/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetChallenge serves the user's current challenge, creating one if needed.
func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	view, err := h.service.GetOrCreateCurrentChallenge(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DiscardChallenge deactivates the current challenge. An optional ?uid= query
// restricts the discard to a specific challenge.
func (h *Handler) DiscardChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	uid := r.URL.Query().Get("uid")
	if err := h.service.DiscardCurrentChallenge(r.Context(), userID, uid); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SubmitResponse records the single answer to a challenge.
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	uid := mux.Vars(r)["uid"]

	var req models.SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.RespondToChallenge(r.Context(), userID, uid, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// writeError maps the user-facing error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a defect: logged, surfaced as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoFactsAvailable):
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "No facts available"})
	case errors.Is(err, ErrAlreadyResponded):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrChallengeNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[quiz] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
