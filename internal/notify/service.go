// Package notify sends booking notifications to professionals by email.
package notify

import (
	"context"
	"fmt"

	"github.com/healthconsult/telehealth-platform/internal/appointments"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// ProfessionalSource resolves the profile a notification is addressed to.
type ProfessionalSource interface {
	GetByID(ctx context.Context, id string) (*professionals.Professional, error)
}

// Service handles sending notifications when a consultation is booked and paid.
type Service struct {
	email     EmailSender
	directory ProfessionalSource
	logger    *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, directory ProfessionalSource, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:     email,
		directory: directory,
		logger:    logger,
	}
}

// AppointmentPaid emails the professional when a patient completes payment
// for a consultation. Callers treat failures as best-effort; the booking
// itself is already committed by the time this runs.
func (s *Service) AppointmentPaid(ctx context.Context, appt *appointments.Appointment) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping confirmation")
		return nil
	}

	prof, err := s.directory.GetByID(ctx, appt.ProfessionalID)
	if err != nil {
		s.logger.Error("notify: failed to resolve professional", "error", err, "professional_id", appt.ProfessionalID)
		return fmt.Errorf("notify: resolve professional: %w", err)
	}
	if prof.Email == "" {
		s.logger.Debug("notify: professional has no email on file", "professional_id", prof.ID)
		return nil
	}

	when := appt.ScheduledAt.Format("Monday, January 2 at 3:04 PM")
	amountStr := fmt.Sprintf("$%d", appt.Fee)

	subject := fmt.Sprintf("New paid consultation - %s", when)
	body := fmt.Sprintf(`A patient has booked and paid for a consultation with you.

Scheduled for: %s
Consultation fee: %s
Meeting link: %s
Appointment ID: %s

The call room opens 15 minutes before the scheduled time. Please review the
patient's intake answers from your appointments dashboard before joining.

— HealthConsult`, when, amountStr, appt.MeetingLink, appt.ID)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">New Paid Consultation</h2>
<p>A patient has booked and paid for a consultation with you.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Scheduled:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Fee:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Meeting link:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><a href="%s">%s</a></td></tr>
</table>
<p style="background: #f0fdf4; padding: 12px; border-radius: 8px; border-left: 4px solid #10b981;">
  The call room opens 15 minutes before the scheduled time. Please review the
  patient's intake answers before joining.
</p>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— HealthConsult</p>
</div>`, when, amountStr, appt.MeetingLink, appt.MeetingLink)

	msg := EmailMessage{
		To:      prof.Email,
		ToName:  prof.Name,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: failed to send booking email", "error", err, "to", prof.Email, "appointment_id", appt.ID)
		return fmt.Errorf("notify: send booking email: %w", err)
	}

	s.logger.Info("notify: booking email sent", "to", prof.Email, "appointment_id", appt.ID)
	return nil
}

var _ appointments.Notifier = (*Service)(nil)
