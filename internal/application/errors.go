package application

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned when the acting person is not allowed to
// perform the requested operation.
var ErrPermissionDenied = errors.New("permission denied")

// ValidationError reports rejected input. The HTTP layer maps it to a 400
// response with the message intact.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
