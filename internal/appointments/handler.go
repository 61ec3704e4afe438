package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/internal/intake"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// ProfileResolver maps an authenticated user to their professional profile.
type ProfileResolver interface {
	GetByUserID(ctx context.Context, userID string) (*professionals.Professional, error)
}

// Handler handles HTTP requests for appointments
type Handler struct {
	svc      *Service
	profiles ProfileResolver
	logger   *logging.Logger
}

// NewHandler creates a new appointments handler
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

// appointmentView decorates an appointment with its live time status.
type appointmentView struct {
	*Appointment
	TimeStatus string `json:"time_status"`
	CanJoin    bool   `json:"can_join"`
}

func viewOf(appt *Appointment, now time.Time) appointmentView {
	return appointmentView{
		Appointment: appt,
		TimeStatus:  TimeStatus(appt, now),
		CanJoin:     CanJoinCall(appt, now),
	}
}

func viewsOf(appts []*Appointment, now time.Time) []appointmentView {
	views := make([]appointmentView, 0, len(appts))
	for _, appt := range appts {
		views = append(views, viewOf(appt, now))
	}
	return views
}

// Book handles POST /appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProfessionalID == "" || req.ScheduledAt.IsZero() {
		http.Error(w, "professional_id and scheduled_at are required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Book(r.Context(), patientID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTime):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, professionals.ErrProfessionalNotFound):
			http.Error(w, "professional not found", http.StatusNotFound)
		case errors.Is(err, intake.ErrSessionNotFound):
			http.Error(w, "chat session not found", http.StatusNotFound)
		case errors.Is(err, ErrSessionNotOwned):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			h.logger.Error("failed to book appointment", "error", err, "patient_id", patientID)
			http.Error(w, "failed to book appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(viewOf(appt, time.Now()))
}

// List handles GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	appts, err := h.svc.PatientAppointments(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "patient_id", patientID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewsOf(appts, time.Now()))
}

// Get handles GET /appointments/{appointmentID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	appt, err := h.svc.Get(r.Context(), patientID, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewOf(appt, time.Now()))
}

type paymentRequest struct {
	AppointmentID string `json:"appointment_id"`
	Amount        int    `json:"amount"`
}

// MockPayment handles POST /appointments/payment/mock
func (h *Handler) MockPayment(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.RecordPayment(r.Context(), patientID, req.AppointmentID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrAlreadyPaid):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrAmountMismatch):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotScheduled):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to record payment", "error", err, "appointment_id", req.AppointmentID)
			http.Error(w, "failed to record payment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewOf(appt, time.Now()))
}

// Join handles GET /appointments/{appointmentID}/join
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	info, err := h.svc.Join(r.Context(), patientID, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to evaluate join window", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to evaluate join window", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// Cancel handles POST /appointments/{appointmentID}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	result, err := h.svc.Cancel(r.Context(), patientID, appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrNotScheduled):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to cancel appointment", "error", err, "appointment_id", appointmentID)
			http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
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

// ProfessionalList handles GET /professional/appointments
func (h *Handler) ProfessionalList(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.resolveProfessional(w, r)
	if !ok {
		return
	}

	upcoming := r.URL.Query().Get("upcoming") == "1"
	appts, err := h.svc.ProfessionalAppointments(r.Context(), prof.ID, upcoming)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "professional_id", prof.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(viewsOf(appts, time.Now()))
}

// ProfessionalComplete handles POST /professional/appointments/{appointmentID}/complete
func (h *Handler) ProfessionalComplete(w http.ResponseWriter, r *http.Request) {
	prof, ok := h.resolveProfessional(w, r)
	if !ok {
		return
	}

	appointmentID := chi.URLParam(r, "appointmentID")
	if err := h.svc.Complete(r.Context(), prof.ID, appointmentID); err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			http.Error(w, "appointment not found", http.StatusNotFound)
		case errors.Is(err, ErrNotScheduled), errors.Is(err, ErrNotPaid):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to complete appointment", "error", err, "appointment_id", appointmentID)
			http.Error(w, "failed to complete appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": appointmentID, "status": StatusCompleted})
}
