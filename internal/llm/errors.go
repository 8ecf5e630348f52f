package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// Kind classifies a failed generation call.
type Kind int

const (
	// KindFatal errors are returned immediately.
	KindFatal Kind = iota
	// KindTransient errors are retried and may trigger a model switch.
	KindTransient
)

func (k Kind) String() string {
	if k == KindTransient {
		return "transient"
	}
	return "fatal"
}

// transientMarkers are matched against error text, case-sensitively.
var transientMarkers = []string{"503", "429", "overloaded", "UNAVAILABLE", "RESOURCE_EXHAUSTED"}

// Classify decides whether err is worth retrying.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindFatal
	}
	if code := statusCode(err); code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
		return KindTransient
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return KindTransient
		}
	}
	return KindFatal
}

// IsTransient reports whether err classifies as KindTransient.
func IsTransient(err error) bool {
	return Classify(err) == KindTransient
}

// statusCode extracts an HTTP status from typed SDK errors, or 0.
func statusCode(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// StatusError is a backend failure carrying an HTTP status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// ErrAllModelsExhausted is returned when every model failed transiently on
// every attempt.
type ErrAllModelsExhausted struct {
	Models   []string
	Attempts int
	Last     error
}

func (e *ErrAllModelsExhausted) Error() string {
	return fmt.Sprintf("all %d models exhausted after %d attempts: %v", len(e.Models), e.Attempts, e.Last)
}

func (e *ErrAllModelsExhausted) Unwrap() error {
	return e.Last
}

// ErrInvalidResponse indicates the model answered but the output was unusable.
type ErrInvalidResponse struct {
	Schema string
	Err    error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error {
	return e.Err
}

// IsServiceFailure reports whether err came from the text generation service
// rather than from the caller or local infrastructure.
func IsServiceFailure(err error) bool {
	var exhausted *ErrAllModelsExhausted
	var invalid *ErrInvalidResponse
	if errors.As(err, &exhausted) || errors.As(err, &invalid) {
		return true
	}
	return statusCode(err) != 0
}
