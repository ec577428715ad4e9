package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Handlers translate these into HTTP
// statuses; everything else surfaces as a remote-operation failure (500).
var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("operation not allowed for this role")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
