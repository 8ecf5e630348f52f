package llm

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// ModelSelector remembers which model in the candidate list last worked.
// It is shared by every invocation and safe for concurrent use.
type ModelSelector struct {
	models  []string
	current atomic.Int64
}

// NewModelSelector creates a selector starting at the first model.
func NewModelSelector(models []string) (*ModelSelector, error) {
	if len(models) == 0 {
		return nil, &ConfigError{Field: "models", Reason: "at least one model is required"}
	}
	for i, m := range models {
		if m == "" {
			return nil, &ConfigError{Field: "models", Reason: fmt.Sprintf("model %d is empty", i)}
		}
	}
	return &ModelSelector{models: slices.Clone(models)}, nil
}

// Models returns the candidate list in preference order.
func (s *ModelSelector) Models() []string {
	return slices.Clone(s.models)
}

// Len returns the number of candidates.
func (s *ModelSelector) Len() int {
	return len(s.models)
}

// Current returns the index invocations start from.
func (s *ModelSelector) Current() int {
	return int(s.current.Load())
}

// CurrentModel returns the model invocations start from.
func (s *ModelSelector) CurrentModel() string {
	return s.models[s.Current()]
}

// At returns the model offset positions after base, wrapping around.
func (s *ModelSelector) At(base, offset int) string {
	return s.models[(base+offset)%len(s.models)]
}

// Promote moves the start index to base+offset if it still equals base.
// It reports whether the index changed.
func (s *ModelSelector) Promote(base, offset int) bool {
	if offset%len(s.models) == 0 {
		return false
	}
	next := int64((base + offset) % len(s.models))
	return s.current.CompareAndSwap(int64(base), next)
}

// Reset points the selector back at the first model.
func (s *ModelSelector) Reset() {
	s.current.Store(0)
}
