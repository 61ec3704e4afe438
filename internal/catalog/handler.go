package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// ConditionSource loads conditions for HTTP listing.
type ConditionSource interface {
	ListConditions(ctx context.Context) ([]Condition, error)
	GetCondition(ctx context.Context, id string) (*Condition, error)
}

// Handler handles HTTP requests for the condition catalog
type Handler struct {
	repo   ConditionSource
	logger *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo ConditionSource, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListConditions handles GET /conditions
func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.repo.ListConditions(r.Context())
	if err != nil {
		h.logger.Error("failed to list conditions", "error", err)
		http.Error(w, "failed to list conditions", http.StatusInternalServerError)
		return
	}
	if conditions == nil {
		conditions = []Condition{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conditions)
}

// GetCondition handles GET /conditions/{conditionID}
func (h *Handler) GetCondition(w http.ResponseWriter, r *http.Request) {
	conditionID := chi.URLParam(r, "conditionID")
	if conditionID == "" {
		http.Error(w, "missing condition id", http.StatusBadRequest)
		return
	}

	condition, err := h.repo.GetCondition(r.Context(), conditionID)
	if err != nil {
		if errors.Is(err, ErrConditionNotFound) {
			http.Error(w, "condition not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load condition", "error", err, "condition_id", conditionID)
		http.Error(w, "failed to load condition", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(condition)
}
