package core

import "errors"

// Error taxonomy shared by the API, the stores and the client.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrUpstream       = errors.New("upstream error")
)

// ValidationError carries the message shown to the caller for a rejected request.
type ValidationError struct {
	Message string
	Details string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ValidationMessage returns the user-facing message of err if it is a
// validation error, or fallback otherwise.
func ValidationMessage(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return fallback
}
