package facts

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/steinarvk/brator/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExportFacts serves the full fact dump, admin only.
func (h *Handler) ExportFacts(w http.ResponseWriter, r *http.Request) {
	allFacts, err := h.service.ExportFacts(r.Context())
	if err != nil {
		log.Printf("[facts] export failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to export facts"})
		return
	}
	if allFacts == nil {
		allFacts = []models.Fact{}
	}
	writeJSON(w, http.StatusOK, allFacts)
}

// ImportFacts accepts either a single fact object or an array of them.
func (h *Handler) ImportFacts(w http.ResponseWriter, r *http.Request) {
	ups, err := decodeOneOrMany[models.FactUpsert](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	imported, err := h.service.ImportFacts(r.Context(), ups)
	if err != nil {
		log.Printf("[facts] import failed after %d facts: %v", imported, err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.ImportFactsResult{Imported: imported})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Printf("[facts] list categories failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list categories"})
		return
	}
	if cats == nil {
		cats = []models.FactCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) ImportCategories(w http.ResponseWriter, r *http.Request) {
	ups, err := decodeOneOrMany[models.CategoryUpsert](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	imported, err := h.service.ImportCategories(r.Context(), ups)
	if err != nil {
		log.Printf("[facts] category import failed after %d: %v", imported, err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.ImportCategoriesResult{Imported: imported})
}

// decodeOneOrMany accepts a JSON array of T or a single T object.
func decodeOneOrMany[T any](r *http.Request) ([]T, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	var many []T
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
