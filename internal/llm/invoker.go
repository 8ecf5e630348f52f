package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
)

// Invoker calls a Backend across the configured models, retrying transient
// failures with exponential backoff and remembering the model that answered.
type Invoker struct {
	backend  Backend
	selector *ModelSelector
	retry    RetryPolicy
	timeout  time.Duration
	bulkhead bulkhead.Bulkhead[string]
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithLogger sets the logger for retry and fallback events.
func WithLogger(l *slog.Logger) Option {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(i *Invoker) {
		if fn != nil {
			i.sleep = fn
		}
	}
}

// NewInvoker validates cfg and builds an Invoker. When selector is nil a new
// one is created over cfg.Models.
func NewInvoker(backend Backend, selector *ModelSelector, cfg *Config, opts ...Option) (*Invoker, error) {
	if backend == nil {
		return nil, errors.New("llm backend is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if selector == nil {
		var err error
		if selector, err = NewModelSelector(cfg.Models); err != nil {
			return nil, err
		}
	}

	inv := &Invoker{
		backend:  backend,
		selector: selector,
		retry:    cfg.Retry,
		timeout:  cfg.Timeout,
		logger:   slog.Default(),
		sleep:    sleepContext,
	}
	if cfg.MaxConcurrent > 0 {
		inv.bulkhead = bulkhead.New[string](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 4,
			QueueTimeout:  30 * time.Second,
		})
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Selector returns the shared model selector.
func (i *Invoker) Selector() *ModelSelector {
	return i.selector
}

// Close releases the backend.
func (i *Invoker) Close() error {
	return i.backend.Close()
}

// Invoke runs req until a model answers, a fatal error occurs, the context
// ends, or every model has failed transiently MaxAttemptsPerModel times.
func (i *Invoker) Invoke(ctx context.Context, req Request) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	if i.bulkhead != nil {
		return i.bulkhead.Execute(ctx, func(ctx context.Context) (string, error) {
			return i.invoke(ctx, req)
		})
	}
	return i.invoke(ctx, req)
}

func (i *Invoker) invoke(ctx context.Context, req Request) (string, error) {
	base := i.selector.Current()
	n := i.selector.Len()
	attempts := 0
	var last error

	for offset := 0; offset < n; offset++ {
		model := i.selector.At(base, offset)

		for attempt := 0; attempt < i.retry.MaxAttemptsPerModel; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			attempts++
			text, err := i.backend.Generate(ctx, model, req)
			if err == nil {
				if offset > 0 && i.selector.Promote(base, offset) {
					i.logger.Info("switched model", "model", model, "index", (base+offset)%n)
				}
				return text, nil
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if Classify(err) == KindFatal {
				i.logger.Warn("model call failed", "model", model, "kind", KindFatal.String(), "error", err)
				return "", fmt.Errorf("model %s: %w", model, err)
			}

			last = err
			if attempt == i.retry.MaxAttemptsPerModel-1 {
				break
			}
			delay := i.retry.Delay(attempt)
			i.logger.Warn("model overloaded, retrying",
				"model", model,
				"attempt", attempt+1,
				"max_attempts", i.retry.MaxAttemptsPerModel,
				"delay", delay,
				"error", err)
			if err := i.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		i.logger.Warn("model exhausted, trying next model", "model", model)
	}

	return "", &ErrAllModelsExhausted{
		Models:   i.selector.Models(),
		Attempts: attempts,
		Last:     last,
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
