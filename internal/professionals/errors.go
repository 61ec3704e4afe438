package professionals

import "errors"

var (
	// ErrProfessionalNotFound is returned when a professional is unknown or not approved
	ErrProfessionalNotFound = errors.New("professional not found")

	// ErrProfileExists is returned when the user already has a professional profile
	ErrProfileExists = errors.New("professional profile already exists")

	// ErrInvalidStatus is returned for an unknown review status
	ErrInvalidStatus = errors.New("invalid professional status")

	// ErrNameRequired is returned when the application has no name
	ErrNameRequired = errors.New("name is required")

	// ErrConditionsRequired is returned when the application lists no conditions
	ErrConditionsRequired = errors.New("at least one condition is required")

	// ErrFeeOutOfRange is returned when a consultation fee leaves the allowed bounds
	ErrFeeOutOfRange = errors.New("consultation fee out of allowed range")
)
