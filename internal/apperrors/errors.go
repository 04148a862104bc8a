package apperrors

import "errors"

// Every operation in internal/logics fails with one of these kinds instead of
// leaking a transport or gorm error. Controllers translate them to HTTP status
// codes; nothing below the controller layer knows about HTTP.
var (
	// ErrUnauthenticated indicates that no principal could be resolved for the request
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates that the principal resolved but is not allowed the action
	ErrForbidden = errors.New("forbidden")

	// ErrReferenceNotFound indicates that a referenced id does not exist
	ErrReferenceNotFound = errors.New("referenced record not found")

	// ErrDuplicateActiveAssignment indicates a second active assignment for the same pair
	ErrDuplicateActiveAssignment = errors.New("active assignment already exists for this pair")

	// ErrInvalidTransition indicates an update-request state machine violation
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUpstreamUnavailable indicates that an external collaborator failed or timed out
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// ValidationError carries a field-level message for input rejected before any
// store call is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
