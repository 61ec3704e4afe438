package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
	"github.com/healthconsult/telehealth-platform/internal/observability/metrics"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

var intakeTracer = otel.Tracer("healthconsult.internal.intake")

// Repository is the persistence surface the engine depends on.
type Repository interface {
	Create(ctx context.Context, session *ChatSession) error
	GetByID(ctx context.Context, id string) (*ChatSession, error)
	AppendAnswer(ctx context.Context, sessionID string, answer Answer, priorCount int, complete bool) error
}

// QuestionSource loads the scripted questions for a condition. Backed by
// the catalog's redis read-through cache in production.
type QuestionSource interface {
	ListQuestions(ctx context.Context, conditionID string) ([]catalog.Question, error)
}

// ProfessionalChecker validates that the chosen professional is approved
// and offers the condition being consulted.
type ProfessionalChecker interface {
	OffersCondition(ctx context.Context, professionalID, conditionID string) (bool, error)
}

// AppointmentResolver maps a professional's appointment to the chat
// session it references. found is false when the appointment is unknown,
// owned by someone else, or has no session attached.
type AppointmentResolver interface {
	SessionForAppointment(ctx context.Context, professionalID, appointmentID string) (sessionID string, found bool, err error)
}

// Service runs questionnaire sessions.
type Service struct {
	repo         Repository
	questions    QuestionSource
	directory    ProfessionalChecker
	appointments AppointmentResolver
	metrics      *metrics.ConsultationMetrics
	logger       *logging.Logger
}

// NewService creates a chat session engine.
func NewService(repo Repository, questions QuestionSource, directory ProfessionalChecker, appointments AppointmentResolver, m *metrics.ConsultationMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:         repo,
		questions:    questions,
		directory:    directory,
		appointments: appointments,
		metrics:      m,
		logger:       logger.Component("intake"),
	}
}

// StartResult is returned from Start: the new session plus the first
// question the client should render.
type StartResult struct {
	Session       *ChatSession      `json:"session"`
	FirstQuestion *catalog.Question `json:"first_question"`
}

// Start opens a session for a patient, snapshotting the condition's
// questions so catalog edits cannot affect it mid-run.
func (s *Service) Start(ctx context.Context, patientID, professionalID, conditionID string) (*StartResult, error) {
	ctx, span := intakeTracer.Start(ctx, "intake.start")
	defer span.End()
	span.SetAttributes(
		attribute.String("condition_id", conditionID),
		attribute.String("professional_id", professionalID),
	)

	offers, err := s.directory.OffersCondition(ctx, professionalID, conditionID)
	if err != nil {
		return nil, err
	}
	if !offers {
		return nil, professionals.ErrProfessionalNotFound
	}

	questions, err := s.questions.ListQuestions(ctx, conditionID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, catalog.ErrNoQuestions
	}

	session := &ChatSession{
		ID:             uuid.New().String(),
		PatientID:      patientID,
		ProfessionalID: professionalID,
		ConditionID:    conditionID,
		Status:         StatusActive,
		Questions:      questions,
		Answers:        []Answer{},
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.ObserveSessionStarted(conditionID)
	s.logger.Info("chat session started",
		"session_id", session.ID,
		"patient_id", patientID,
		"condition_id", conditionID,
		"question_count", len(questions))

	first := session.Questions[0]
	return &StartResult{Session: session, FirstQuestion: &first}, nil
}

// AnswerResult reports the state after one answer is recorded.
type AnswerResult struct {
	SessionID    string            `json:"session_id"`
	Status       string            `json:"status"`
	Answered     int               `json:"answered"`
	Total        int               `json:"total"`
	NextQuestion *catalog.Question `json:"next_question,omitempty"`
}

// Answer records one response. The question must be the next unanswered
// one in snapshot order and the text must be one of its options. The
// final answer completes the session in the same call.
func (s *Service) Answer(ctx context.Context, patientID, sessionID, questionID, answerText string) (*AnswerResult, error) {
	ctx, span := intakeTracer.Start(ctx, "intake.answer")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	started := time.Now()
	result, err := s.answer(ctx, patientID, sessionID, questionID, answerText)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveAnswer(status)
	s.metrics.ObserveAnswerLatency(status, time.Since(started).Seconds())
	return result, err
}

func (s *Service) answer(ctx context.Context, patientID, sessionID, questionID, answerText string) (*AnswerResult, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != patientID {
		return nil, ErrSessionNotOwned
	}
	if session.Completed() {
		return nil, ErrSessionCompleted
	}

	next := session.NextQuestion()
	if next == nil {
		// Answers already cover the snapshot; the status just hasn't
		// been observed as completed by this caller.
		return nil, ErrSessionCompleted
	}
	if next.ID != questionID {
		return nil, ErrOutOfOrder
	}
	if !validOption(next.Options, answerText) {
		return nil, ErrInvalidAnswer
	}

	answer := Answer{
		QuestionID: next.ID,
		Question:   next.Text,
		Answer:     answerText,
		AnsweredAt: time.Now().UTC(),
	}
	complete := len(session.Answers)+1 == len(session.Questions)
	if err := s.repo.AppendAnswer(ctx, sessionID, answer, len(session.Answers), complete); err != nil {
		return nil, err
	}

	result := &AnswerResult{
		SessionID: sessionID,
		Status:    StatusActive,
		Answered:  len(session.Answers) + 1,
		Total:     len(session.Questions),
	}
	if complete {
		result.Status = StatusCompleted
		s.metrics.ObserveSessionCompleted(session.ConditionID)
		s.logger.Info("chat session completed",
			"session_id", sessionID,
			"condition_id", session.ConditionID)
	} else {
		upcoming := session.Questions[len(session.Answers)+1]
		result.NextQuestion = &upcoming
	}
	return result, nil
}

// Session returns a session for its owning patient.
func (s *Service) Session(ctx context.Context, patientID, sessionID string) (*ChatSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != patientID {
		return nil, ErrSessionNotOwned
	}
	return session, nil
}

// HistoryForProfessional returns the chat history behind one of the
// professional's appointments. Access rides on appointment ownership;
// appointments without a session report ErrSessionNotFound.
func (s *Service) HistoryForProfessional(ctx context.Context, professionalID, appointmentID string) (*ChatSession, error) {
	sessionID, found, err := s.appointments.SessionForAppointment(ctx, professionalID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return s.repo.GetByID(ctx, sessionID)
}

func validOption(options []string, answer string) bool {
	// Free-text questions carry no options.
	if len(options) == 0 {
		return answer != ""
	}
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
