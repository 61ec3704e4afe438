package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// Handler handles HTTP requests for chat sessions
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new intake handler
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

type startRequest struct {
	ProfessionalID string `json:"professional_id"`
	ConditionID    string `json:"condition_id"`
}

// Start handles POST /chat/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProfessionalID == "" || req.ConditionID == "" {
		http.Error(w, "professional_id and condition_id are required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Start(r.Context(), patientID, req.ProfessionalID, req.ConditionID)
	if err != nil {
		switch {
		case errors.Is(err, professionals.ErrProfessionalNotFound):
			http.Error(w, "professional not found for condition", http.StatusNotFound)
		case errors.Is(err, catalog.ErrConditionNotFound), errors.Is(err, catalog.ErrNoQuestions):
			http.Error(w, "no questions for condition", http.StatusNotFound)
		default:
			h.logger.Error("failed to start chat session", "error", err, "patient_id", patientID)
			http.Error(w, "failed to start chat session", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

type answerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Answer handles POST /chat/answer
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.QuestionID == "" {
		http.Error(w, "session_id and question_id are required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Answer(r.Context(), patientID, req.SessionID, req.QuestionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "chat session not found", http.StatusNotFound)
		case errors.Is(err, ErrSessionNotOwned):
			http.Error(w, "chat session belongs to another patient", http.StatusForbidden)
		case errors.Is(err, ErrSessionCompleted):
			http.Error(w, "chat session already completed", http.StatusConflict)
		case errors.Is(err, ErrOutOfOrder):
			http.Error(w, "answer out of order", http.StatusConflict)
		case errors.Is(err, ErrInvalidAnswer):
			http.Error(w, "answer is not a valid option", http.StatusBadRequest)
		default:
			h.logger.Error("failed to record answer", "error", err, "session_id", req.SessionID)
			http.Error(w, "failed to record answer", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Session handles GET /chat/sessions/{sessionID}
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	patientID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	session, err := h.svc.Session(r.Context(), patientID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "chat session not found", http.StatusNotFound)
		case errors.Is(err, ErrSessionNotOwned):
			http.Error(w, "chat session belongs to another patient", http.StatusForbidden)
		default:
			h.logger.Error("failed to load chat session", "error", err, "session_id", sessionID)
			http.Error(w, "failed to load chat session", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// ProfileResolver maps an authenticated user to their professional profile.
type ProfileResolver interface {
	GetByUserID(ctx context.Context, userID string) (*professionals.Professional, error)
}

// ChatHistory handles GET /professional/appointments/{appointmentID}/chat-history
func (h *Handler) ChatHistory(profiles ProfileResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := identity.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "missing user identity", http.StatusUnauthorized)
			return
		}

		appointmentID := chi.URLParam(r, "appointmentID")
		if appointmentID == "" {
			http.Error(w, "missing appointment id", http.StatusBadRequest)
			return
		}

		prof, err := profiles.GetByUserID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, professionals.ErrProfessionalNotFound) {
				http.Error(w, "professional profile not found", http.StatusNotFound)
				return
			}
			h.logger.Error("failed to resolve professional", "error", err, "user_id", userID)
			http.Error(w, "failed to resolve professional", http.StatusInternalServerError)
			return
		}

		session, err := h.svc.HistoryForProfessional(r.Context(), prof.ID, appointmentID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				http.Error(w, "chat history not found", http.StatusNotFound)
				return
			}
			h.logger.Error("failed to load chat history", "error", err, "appointment_id", appointmentID)
			http.Error(w, "failed to load chat history", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session)
	}
}
