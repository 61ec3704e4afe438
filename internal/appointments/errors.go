package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when an appointment is unknown or not visible to the caller
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTime is returned when the requested slot is not in the future
	ErrInvalidTime = errors.New("appointment time must be in the future")

	// ErrSessionNotOwned is returned when booking references another patient's chat session
	ErrSessionNotOwned = errors.New("chat session belongs to another patient")

	// ErrAlreadyPaid is returned when paying an appointment twice
	ErrAlreadyPaid = errors.New("appointment already paid")

	// ErrAmountMismatch is returned when the paid amount differs from the booked fee
	ErrAmountMismatch = errors.New("payment amount does not match appointment fee")

	// ErrNotScheduled is returned when cancelling or completing a non-scheduled appointment
	ErrNotScheduled = errors.New("appointment is not in scheduled state")

	// ErrNotPaid is returned when completing an unpaid appointment
	ErrNotPaid = errors.New("appointment is not paid")
)
