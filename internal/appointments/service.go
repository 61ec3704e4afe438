package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/healthconsult/telehealth-platform/internal/billing"
	"github.com/healthconsult/telehealth-platform/internal/intake"
	"github.com/healthconsult/telehealth-platform/internal/observability/metrics"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

var apptTracer = otel.Tracer("healthconsult.internal.appointments")

// Repository is the persistence surface the lifecycle depends on.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	GetForPatient(ctx context.Context, patientID, id string) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListByProfessional(ctx context.Context, professionalID string, upcomingOnly bool) ([]*Appointment, error)
	MarkPaid(ctx context.Context, id, meetingLink string) (bool, error)
	Cancel(ctx context.Context, patientID, id string) error
	Complete(ctx context.Context, professionalID, id string) error
}

// FeeResolver snapshots the professional's active fee at booking time.
type FeeResolver interface {
	ActiveFee(ctx context.Context, professionalID string) (int, error)
}

// ProfessionalDirectory validates the booked professional.
type ProfessionalDirectory interface {
	GetApproved(ctx context.Context, id string) (*professionals.Professional, error)
}

// SessionSource loads chat sessions for booking ownership checks.
type SessionSource interface {
	GetByID(ctx context.Context, id string) (*intake.ChatSession, error)
}

// Notifier delivers post-payment notifications. Failures are logged,
// never surfaced to the payer.
type Notifier interface {
	AppointmentPaid(ctx context.Context, appt *Appointment) error
}

// Service runs the appointment lifecycle.
type Service struct {
	repo           Repository
	fees           FeeResolver
	directory      ProfessionalDirectory
	sessions       SessionSource
	notifier       Notifier
	metrics        *metrics.ConsultationMetrics
	logger         *logging.Logger
	meetingBaseURL string
	platformFee    int
	now            func() time.Time
}

// NewService creates an appointment lifecycle service.
func NewService(repo Repository, fees FeeResolver, directory ProfessionalDirectory, sessions SessionSource, notifier Notifier, m *metrics.ConsultationMetrics, logger *logging.Logger, meetingBaseURL string, platformFee int) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:           repo,
		fees:           fees,
		directory:      directory,
		sessions:       sessions,
		notifier:       notifier,
		metrics:        m,
		logger:         logger.Component("appointments"),
		meetingBaseURL: meetingBaseURL,
		platformFee:    platformFee,
		now:            time.Now,
	}
}

// Book schedules a consultation. The fee is resolved once here and
// written onto the appointment; later fee approvals never reprice an
// existing booking. A referenced chat session must belong to the booking
// patient but does not have to be completed.
func (s *Service) Book(ctx context.Context, patientID string, req *BookRequest) (*Appointment, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(attribute.String("professional_id", req.ProfessionalID))

	if !req.ScheduledAt.After(s.now()) {
		return nil, ErrInvalidTime
	}

	if _, err := s.directory.GetApproved(ctx, req.ProfessionalID); err != nil {
		return nil, err
	}

	if req.SessionID != "" {
		session, err := s.sessions.GetByID(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		if session.PatientID != patientID {
			return nil, ErrSessionNotOwned
		}
	}

	fee, err := s.fees.ActiveFee(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:             uuid.New().String(),
		PatientID:      patientID,
		ProfessionalID: req.ProfessionalID,
		SessionID:      req.SessionID,
		ScheduledAt:    req.ScheduledAt.UTC(),
		Fee:            fee,
		Status:         StatusScheduled,
		PaymentStatus:  PaymentPending,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"patient_id", patientID,
		"professional_id", req.ProfessionalID,
		"fee", fee,
		"scheduled_at", appt.ScheduledAt)
	return appt, nil
}

// RecordPayment settles the mock payment. The amount must match the
// booked fee exactly, and the pending-to-paid transition happens at most
// once; the meeting link exists only after it.
func (s *Service) RecordPayment(ctx context.Context, patientID, appointmentID string, amount int) (*Appointment, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.record_payment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID))

	appt, err := s.repo.GetForPatient(ctx, patientID, appointmentID)
	if err != nil {
		s.metrics.ObservePayment("error")
		return nil, err
	}
	if appt.Status != StatusScheduled {
		s.metrics.ObservePayment("rejected")
		return nil, ErrNotScheduled
	}
	if appt.PaymentStatus == PaymentPaid {
		s.metrics.ObservePayment("duplicate")
		return nil, ErrAlreadyPaid
	}
	if amount != appt.Fee {
		s.metrics.ObservePayment("amount_mismatch")
		return nil, ErrAmountMismatch
	}

	link, err := NewMeetingLink(s.meetingBaseURL)
	if err != nil {
		s.metrics.ObservePayment("error")
		return nil, err
	}

	transitioned, err := s.repo.MarkPaid(ctx, appointmentID, link)
	if err != nil {
		s.metrics.ObservePayment("error")
		return nil, err
	}
	if !transitioned {
		// A concurrent payment won the conditional update.
		s.metrics.ObservePayment("duplicate")
		return nil, ErrAlreadyPaid
	}

	appt.PaymentStatus = PaymentPaid
	appt.MeetingLink = link
	s.metrics.ObservePayment("paid")
	s.logger.Info("payment recorded",
		"appointment_id", appointmentID,
		"patient_id", patientID,
		"amount", amount)

	if s.notifier != nil {
		if err := s.notifier.AppointmentPaid(ctx, appt); err != nil {
			s.logger.Warn("payment notification failed", "error", err, "appointment_id", appointmentID)
		}
	}
	return appt, nil
}

// JoinInfo reports join-window eligibility for the call page.
type JoinInfo struct {
	AppointmentID string `json:"appointment_id"`
	CanJoin       bool   `json:"can_join"`
	TimeStatus    string `json:"time_status"`
	MeetingLink   string `json:"meeting_link,omitempty"`
}

// Join evaluates the join window for a patient's appointment. The
// meeting link is only disclosed while joining is allowed.
func (s *Service) Join(ctx context.Context, patientID, appointmentID string) (*JoinInfo, error) {
	appt, err := s.repo.GetForPatient(ctx, patientID, appointmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	info := &JoinInfo{
		AppointmentID: appt.ID,
		CanJoin:       CanJoinCall(appt, now),
		TimeStatus:    TimeStatus(appt, now),
	}
	if info.CanJoin {
		info.MeetingLink = appt.MeetingLink
	}
	return info, nil
}

// CancelResult reports a cancellation outcome. Refund is set only when
// the appointment had been paid.
type CancelResult struct {
	AppointmentID string          `json:"appointment_id"`
	Status        string          `json:"status"`
	Refund        *billing.Refund `json:"refund,omitempty"`
}

// Cancel cancels a patient's scheduled appointment. Terminal. Paid
// appointments get a refund quote under the tiered policy, measured
// from the time of cancellation.
func (s *Service) Cancel(ctx context.Context, patientID, appointmentID string) (*CancelResult, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID))

	appt, err := s.repo.GetForPatient(ctx, patientID, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Cancel(ctx, patientID, appointmentID); err != nil {
		return nil, err
	}

	result := &CancelResult{AppointmentID: appointmentID, Status: StatusCancelled}
	if appt.PaymentStatus == PaymentPaid {
		hoursBefore := int(appt.ScheduledAt.Sub(s.now()).Hours())
		total := appt.Fee + s.platformFee
		refund := billing.CancellationRefund(total, hoursBefore, s.platformFee)
		result.Refund = &refund
	}

	s.logger.Info("appointment cancelled", "appointment_id", appointmentID, "patient_id", patientID, "refunded", result.Refund != nil)
	return result, nil
}

// Complete marks a paid consultation as done. Professional action.
func (s *Service) Complete(ctx context.Context, professionalID, appointmentID string) error {
	ctx, span := apptTracer.Start(ctx, "appointments.complete")
	defer span.End()
	span.SetAttributes(attribute.String("appointment_id", appointmentID))

	if err := s.repo.Complete(ctx, professionalID, appointmentID); err != nil {
		return err
	}
	s.logger.Info("appointment completed", "appointment_id", appointmentID, "professional_id", professionalID)
	return nil
}

// Get returns a patient's appointment.
func (s *Service) Get(ctx context.Context, patientID, appointmentID string) (*Appointment, error) {
	return s.repo.GetForPatient(ctx, patientID, appointmentID)
}

// PatientAppointments lists a patient's appointments.
func (s *Service) PatientAppointments(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ProfessionalAppointments lists a professional's appointments.
func (s *Service) ProfessionalAppointments(ctx context.Context, professionalID string, upcomingOnly bool) ([]*Appointment, error) {
	return s.repo.ListByProfessional(ctx, professionalID, upcomingOnly)
}
