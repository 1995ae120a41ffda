package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by the services. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrRelationNotFound = errors.New("relation not found")
	ErrConflict         = errors.New("already exists")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("authentication required")
)

// ValidationError rejects input before anything is written
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// translateError maps GORM errors onto the service error kinds
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
