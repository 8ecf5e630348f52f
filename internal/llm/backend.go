package llm

import (
	"context"
	"log/slog"
)

// NewBackend creates the backend for cfg.Provider.
func NewBackend(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIBackend(cfg)
	default:
		return NewGeminiBackend(ctx, cfg)
	}
}

// New builds a ready Invoker over the provider backend for cfg.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Invoker, error) {
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	inv, err := NewInvoker(backend, nil, cfg, WithLogger(logger))
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return inv, nil
}
