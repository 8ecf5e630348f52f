package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// GenerateJSON invokes g with a schema-constrained request, validates the
// answer against the schema and decodes it into T. Invalid output is fatal.
func GenerateJSON[T any](ctx context.Context, g Generator, req Request) (T, error) {
	var zero T
	if req.Schema == nil {
		return zero, errors.New("structured generation requires a schema")
	}

	text, err := g.Invoke(ctx, req)
	if err != nil {
		return zero, err
	}

	cleaned := CleanJSONBlock(text)
	if err := req.Schema.Validate([]byte(cleaned)); err != nil {
		return zero, &ErrInvalidResponse{Schema: req.Schema.Name, Err: err}
	}

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return zero, &ErrInvalidResponse{Schema: req.Schema.Name, Err: fmt.Errorf("failed to decode: %w", err)}
	}
	return out, nil
}
