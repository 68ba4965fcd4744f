package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrMissingField     = errors.New("missing field")

	// ErrConversationExists is returned by stores asked to open an id that
	// is already taken.
	ErrConversationExists = errors.New("conversation already exists")
)

// ValidationError reports input rejected at the ingestion boundary.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
