package catalog

import "errors"

var (
	// ErrConditionNotFound is returned when a condition id is unknown or inactive
	ErrConditionNotFound = errors.New("condition not found")

	// ErrNoQuestions is returned when a condition has no intake questions
	ErrNoQuestions = errors.New("condition has no intake questions")
)
