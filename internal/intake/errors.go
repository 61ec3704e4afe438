package intake

import "errors"

var (
	// ErrSessionNotFound is returned when a chat session is unknown
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrSessionCompleted is returned when answering a completed session
	ErrSessionCompleted = errors.New("chat session already completed")

	// ErrSessionNotOwned is returned when the caller does not own the session
	ErrSessionNotOwned = errors.New("chat session belongs to another patient")

	// ErrOutOfOrder is returned when the answer does not target the next unanswered question
	ErrOutOfOrder = errors.New("answer out of order")

	// ErrInvalidAnswer is returned when the answer is not one of the question's options
	ErrInvalidAnswer = errors.New("answer is not a valid option")
)
