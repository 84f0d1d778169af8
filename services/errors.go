package services

import (
	"errors"
	"fmt"

	"dokta/database"
)

// ErrNotFound is shared with the repositories so callers can match either.
var ErrNotFound = database.ErrNotFound

// ErrUnauthorized covers bad credentials and unknown tokens.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ConflictError reports a request that clashes with current state.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeSlotTaken         = "slotTaken"
	CodeInvalidTransition = "invalidTransition"
	CodePhoneTaken        = "phoneTaken"
	CodeInProgress        = "requestInProgress"
)

func NewConflictError(code, msg string) error {
	return &ConflictError{Code: code, Message: msg}
}

// IsConflict reports whether err is a ConflictError with the given code.
// An empty code matches any conflict.
func IsConflict(err error, code string) bool {
	var ce *ConflictError
	if !errors.As(err, &ce) {
		return false
	}
	return code == "" || ce.Code == code
}
