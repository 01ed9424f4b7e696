package scores

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/steinarvk/brator/internal/auth"
	"github.com/steinarvk/brator/internal/models"
)

// maxRecentScores bounds the scores listing.
const maxRecentScores = 1000

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetScores serves the user's recent per-response scores, newest first.
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	scores, err := h.service.RecentScores(r.Context(), userID, maxRecentScores)
	if err != nil {
		log.Printf("[scores] list scores: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	if scores == nil {
		scores = []models.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, models.ScoreListResponse{Scores: scores})
}

// GetSummaries serves the summary series for one batch size, oldest first.
func (h *Handler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	batchSize, err := strconv.Atoi(r.URL.Query().Get("batch_size"))
	if err != nil || !h.standardSize(batchSize) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid or missing batch_size"})
		return
	}

	series, err := h.service.SummarySeries(r.Context(), userID, batchSize)
	if err != nil {
		log.Printf("[scores] list summaries: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// GetLargestBatch reports the largest standard batch size the user has a
// summary for; batch_size is null before the first summary lands.
func (h *Handler) GetLargestBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	size, err := h.service.LargestSummarizedBatchSize(r.Context(), userID)
	if err != nil {
		log.Printf("[scores] largest batch: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, models.LargestBatchResponse{BatchSize: size})
}

func (h *Handler) standardSize(size int) bool {
	for _, s := range h.service.BatchSizes() {
		if s == size {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
