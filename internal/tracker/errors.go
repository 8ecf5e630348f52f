package tracker

import (
	"errors"
	"fmt"
)

// ErrQuizCompleted is returned when submitting a quiz that was already passed.
var ErrQuizCompleted = errors.New("quiz already completed")

// ErrNotFound is returned when a user, roadmap, module or subtopic does not exist.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrValidation is returned for input the tracker refuses to apply.
type ErrValidation struct {
	Field   string
	Message string
	Err     error
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ErrValidation) Unwrap() error {
	return e.Err
}

func notFound(kind, id string) error {
	return &ErrNotFound{Kind: kind, ID: id}
}

func invalid(field, format string, args ...any) error {
	return &ErrValidation{Field: field, Message: fmt.Sprintf(format, args...)}
}
