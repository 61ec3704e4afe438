package professionals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// Directory is the repository surface the HTTP layer depends on.
type Directory interface {
	Create(ctx context.Context, req *ApplicationRequest) (*Professional, error)
	GetByID(ctx context.Context, id string) (*Professional, error)
	GetByUserID(ctx context.Context, userID string) (*Professional, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Professional, error)
	ListApprovedByCondition(ctx context.Context, conditionID string) ([]*Professional, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// Handler handles HTTP requests for professional profiles
type Handler struct {
	repo   Directory
	logger *logging.Logger
}

// NewHandler creates a new professionals handler
func NewHandler(repo Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Apply handles POST /professionals/apply. The caller becomes a pending
// professional awaiting admin review.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.UserID = userID

	prof, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileExists):
			http.Error(w, "profile already exists", http.StatusConflict)
		case errors.Is(err, ErrNameRequired),
			errors.Is(err, ErrConditionsRequired),
			errors.Is(err, ErrFeeOutOfRange):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to create professional", "error", err, "user_id", userID)
			http.Error(w, "failed to create professional", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("professional application received", "professional_id", prof.ID, "user_id", userID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(prof)
}

// List handles GET /professionals. Patients only see approved profiles;
// the admin surface passes an explicit status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = StatusApproved
	}
	if !ValidStatus(status) {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	pros, err := h.repo.List(r.Context(), status, 100, 0)
	if err != nil {
		h.logger.Error("failed to list professionals", "error", err)
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	if pros == nil {
		pros = []*Professional{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pros)
}

// Get handles GET /professionals/{professionalID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "professionalID")
	if id == "" {
		http.Error(w, "missing professional id", http.StatusBadRequest)
		return
	}

	prof, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProfessionalNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load professional", "error", err, "professional_id", id)
		http.Error(w, "failed to load professional", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

// ListByCondition handles GET /conditions/{conditionID}/professionals
func (h *Handler) ListByCondition(w http.ResponseWriter, r *http.Request) {
	conditionID := chi.URLParam(r, "conditionID")
	if conditionID == "" {
		http.Error(w, "missing condition id", http.StatusBadRequest)
		return
	}

	pros, err := h.repo.ListApprovedByCondition(r.Context(), conditionID)
	if err != nil {
		h.logger.Error("failed to list professionals by condition", "error", err, "condition_id", conditionID)
		http.Error(w, "failed to list professionals", http.StatusInternalServerError)
		return
	}
	if pros == nil {
		pros = []*Professional{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pros)
}

// MyProfile handles GET /professionals/my/profile
func (h *Handler) MyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	prof, err := h.repo.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfessionalNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load own profile", "error", err, "user_id", userID)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /admin/professionals/{professionalID}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "professionalID")
	if id == "" {
		http.Error(w, "missing professional id", http.StatusBadRequest)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status != StatusApproved && req.Status != StatusRejected {
		http.Error(w, "status must be approved or rejected", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrProfessionalNotFound):
			http.Error(w, "professional not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, "invalid status", http.StatusBadRequest)
		default:
			h.logger.Error("failed to update professional status", "error", err, "professional_id", id)
			http.Error(w, "failed to update status", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("professional review recorded", "professional_id", id, "status", req.Status)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id, "status": req.Status})
}
