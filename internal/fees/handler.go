package fees

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/internal/http/middleware"
	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// ProfileResolver maps an authenticated user to their professional profile.
type ProfileResolver interface {
	GetByUserID(ctx context.Context, userID string) (*professionals.Professional, error)
}

// Handler handles HTTP requests for the fee change workflow
type Handler struct {
	svc      *Service
	profiles ProfileResolver
	logger   *logging.Logger
}

// NewHandler creates a new fees handler
func NewHandler(svc *Service, profiles ProfileResolver, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:      svc,
		profiles: profiles,
		logger:   logger,
	}
}

func (h *Handler) resolveProfessional(w http.ResponseWriter, r *http.Request) (*professionals.Professional, bool) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return nil, false
	}
	prof, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, professionals.ErrProfessionalNotFound) {
			http.Error(w, "professional profile not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to resolve professional", "error", err, "user_id", userID)
		http.Error(w, "failed to resolve professional", http.StatusInternalServerError)
		return nil, false
	}
	return prof, true
}

// CreateRequest handles POST /professional/fee-requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.resolveProfessional(w, r)
	if !ok {
		return
	}

	var change ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req, err := h.svc.RequestChange(r.Context(), prof.ID, &change)
	if err != nil {
		switch {
		case errors.Is(err, ErrReasonRequired),
			errors.Is(err, professionals.ErrFeeOutOfRange):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrPendingRequestExists):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, professionals.ErrProfessionalNotFound):
			http.Error(w, "professional not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to create fee request", "error", err, "professional_id", prof.ID)
			http.Error(w, "failed to create fee request", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(req)
}

// ListMine handles GET /professional/fee-requests
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.resolveProfessional(w, r)
	if !ok {
		return
	}

	reqs, err := h.svc.Requests(r.Context(), prof.ID)
	if err != nil {
		h.logger.Error("failed to list fee requests", "error", err, "professional_id", prof.ID)
		http.Error(w, "failed to list fee requests", http.StatusInternalServerError)
		return
	}
	if reqs == nil {
		reqs = []*FeeChangeRequest{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reqs)
}

// AdminList handles GET /admin/fee-requests?status=pending
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = StatusPending
	}
	if status != StatusPending && status != StatusApproved && status != StatusRejected {
		http.Error(w, "invalid status filter", http.StatusBadRequest)
		return
	}

	reqs, err := h.svc.RequestsByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list fee requests", "error", err, "status", status)
		http.Error(w, "failed to list fee requests", http.StatusInternalServerError)
		return
	}
	if reqs == nil {
		reqs = []*FeeChangeRequest{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reqs)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// Approve handles POST /admin/fee-requests/{requestID}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.reviewEndpoint(w, r, h.svc.Approve)
}

// Reject handles POST /admin/fee-requests/{requestID}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.reviewEndpoint(w, r, h.svc.Reject)
}

func (h *Handler) reviewEndpoint(w http.ResponseWriter, r *http.Request, review func(ctx context.Context, requestID, reviewedBy, notes string) (*FeeChangeRequest, error)) {
	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		http.Error(w, "missing request id", http.StatusBadRequest)
		return
	}

	var body reviewRequest
	if r.Body != nil {
		// An empty body is fine for approvals.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	reviewedBy := "admin"
	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		reviewedBy = claims.Subject
	}

	req, err := review(r.Context(), requestID, reviewedBy, body.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			http.Error(w, "fee change request not found", http.StatusNotFound)
		case errors.Is(err, ErrRequestReviewed):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrNotesRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to review fee request", "error", err, "request_id", requestID)
			http.Error(w, "failed to review fee request", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(req)
}

// ActiveFee handles GET /professionals/{professionalID}/fee
func (h *Handler) ActiveFee(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalID")
	if professionalID == "" {
		http.Error(w, "missing professional id", http.StatusBadRequest)
		return
	}

	fee, err := h.svc.ActiveFee(r.Context(), professionalID)
	if err != nil {
		if errors.Is(err, professionals.ErrProfessionalNotFound) {
			http.Error(w, "professional not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve active fee", "error", err, "professional_id", professionalID)
		http.Error(w, "failed to resolve active fee", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"professional_id": professionalID,
		"active_fee":      fee,
	})
}
