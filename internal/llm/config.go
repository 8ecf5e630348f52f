// Package llm runs text generation against an ordered list of models with
// per-model retry, exponential backoff and sticky fallback.
package llm

import (
	"fmt"
	"slices"
	"time"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint
	ProviderOpenAI Provider = "openai"
)

// maxBackoffShift caps the exponent so BaseDelay*2^k cannot overflow.
const maxBackoffShift = 30

// RetryPolicy controls retries against a single model.
type RetryPolicy struct {
	MaxAttemptsPerModel int
	BaseDelay           time.Duration
}

// DefaultRetryPolicy returns 3 attempts per model starting at a 1s delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttemptsPerModel: 3, BaseDelay: time.Second}
}

// Delay returns the wait before retrying after the given 0-indexed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return p.BaseDelay * time.Duration(1<<attempt)
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxAttemptsPerModel < 1 {
		return &ConfigError{Field: "max_attempts_per_model", Reason: fmt.Sprintf("must be >= 1, got %d", p.MaxAttemptsPerModel)}
	}
	if p.BaseDelay < 0 {
		return &ConfigError{Field: "base_delay", Reason: fmt.Sprintf("must be >= 0, got %s", p.BaseDelay)}
	}
	return nil
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	APIKey   string
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, tests).
	BaseURL string
	// Models is the ordered candidate list, most preferred first.
	Models        []string
	Retry         RetryPolicy
	MaxConcurrent int
	// Timeout bounds a whole invocation across all models; zero disables it.
	Timeout     time.Duration
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Models:      []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.0-flash"},
		Retry:       DefaultRetryPolicy(),
		Timeout:     2 * time.Minute,
		Temperature: 0.4,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Models:      []string{"gpt-4o-mini", "gpt-4o"},
		Retry:       DefaultRetryPolicy(),
		Timeout:     2 * time.Minute,
		Temperature: 0.4,
	}
}

// DefaultModels returns the built-in candidate list for a provider.
func DefaultModels(p Provider) []string {
	if p == ProviderOpenAI {
		return DefaultOpenAIConfig().Models
	}
	return DefaultGeminiConfig().Models
}

// WithModels returns a copy of the config using the given candidate list.
func (c *Config) WithModels(models ...string) *Config {
	next := *c
	next.Models = slices.Clone(models)
	return &next
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return &ConfigError{Field: "provider", Reason: fmt.Sprintf("unsupported provider %q", c.Provider)}
	}
	if len(c.Models) == 0 {
		return &ConfigError{Field: "models", Reason: "at least one model is required"}
	}
	for i, m := range c.Models {
		if m == "" {
			return &ConfigError{Field: "models", Reason: fmt.Sprintf("model %d is empty", i)}
		}
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if c.MaxConcurrent < 0 {
		return &ConfigError{Field: "max_concurrent", Reason: "must be >= 0"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "must be >= 0"}
	}
	return nil
}

// ConfigError reports an invalid invocation setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid llm config %s: %s", e.Field, e.Reason)
}
