package llm

import (
	"context"

	"github.com/jonathan/skillforge/internal/schemas"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat history.
type Message struct {
	Role Role   `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

// Request is a single generation call. Schema, when set, asks the backend
// for JSON output conforming to it.
type Request struct {
	System  string
	History []Message
	Prompt  string
	Schema  *schemas.Schema
	// Temperature overrides the configured temperature when non-nil.
	Temperature *float32
}

// Backend performs one generation call against a named model.
type Backend interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
	Close() error
}

// Generator is what callers use: a resilient generation entry point.
type Generator interface {
	Invoke(ctx context.Context, req Request) (string, error)
}
