// Package server provides the HTTP REST API for the learning tracker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/llm"
	"github.com/jonathan/skillforge/internal/tracker"
)

// MsgAIUnavailable is shown for every terminal text generation failure.
const MsgAIUnavailable = "AI service unavailable, please retry"

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error,
// looking through wrapping.
func HTTPStatus(err error) int {
	var (
		emailTaken   *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userNotFound *ErrUserNotFound
		validation   *ErrValidation
		notFound     *tracker.ErrNotFound
		invalid      *tracker.ErrValidation
		exhausted    *llm.ErrAllModelsExhausted
	)
	switch {
	case errors.As(err, &emailTaken), errors.Is(err, db.ErrEmailTaken), errors.Is(err, tracker.ErrQuizCompleted):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &exhausted):
		return http.StatusServiceUnavailable
	case llm.IsServiceFailure(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text sent to clients. Model failures and
// internal errors are replaced by generic messages; the log keeps the cause.
func publicMessage(err error, status int) string {
	switch {
	case llm.IsServiceFailure(err):
		return MsgAIUnavailable
	case status >= http.StatusInternalServerError:
		return http.StatusText(status)
	default:
		return err.Error()
	}
}
