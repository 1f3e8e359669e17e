package domain

import "errors"

var (
	// ErrTransientProduct is returned when code asks a product that was never
	// persisted for its identifier.
	ErrTransientProduct = errors.New("product has no identifier yet")

	// ErrInsufficientStock is returned when a stock decrease exceeds the
	// quantity currently on hand.
	ErrInsufficientStock = errors.New("requested amount exceeds available stock")
)

// ValidationError signals that an input violates a product or movement
// invariant. It is client-correctable and maps to HTTP 400 at the boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
