package fees

import "errors"

var (
	// ErrRequestNotFound is returned when a fee change request is unknown
	ErrRequestNotFound = errors.New("fee change request not found")

	// ErrRequestReviewed is returned when reviewing a request that is no longer pending
	ErrRequestReviewed = errors.New("fee change request already reviewed")

	// ErrPendingRequestExists is returned when the professional already has a pending request
	ErrPendingRequestExists = errors.New("a pending fee change request already exists")

	// ErrReasonRequired is returned when a change request carries no reason
	ErrReasonRequired = errors.New("reason is required")

	// ErrNotesRequired is returned when a rejection carries no review notes
	ErrNotesRequired = errors.New("review notes are required to reject")
)
