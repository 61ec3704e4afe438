// Package appointments manages the consultation booking lifecycle:
// booking against a professional, the mock payment step that mints the
// meeting link, the join window, and completion or cancellation.
package appointments

import "time"

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Appointment is a booked consultation. Fee is snapshotted from the
// professional's active fee at booking time and never re-resolved.
type Appointment struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	ProfessionalID string    `json:"professional_id"`
	SessionID      string    `json:"session_id,omitempty"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Fee            int       `json:"fee"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	MeetingLink    string    `json:"meeting_link,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookRequest is the request body for booking an appointment. SessionID
// is optional; when present it ties the pre-consultation questionnaire
// to the booking.
type BookRequest struct {
	ProfessionalID string    `json:"professional_id"`
	SessionID      string    `json:"session_id,omitempty"`
	ScheduledAt    time.Time `json:"scheduled_at"`
}
