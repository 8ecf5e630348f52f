package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModels = []string{"model-a", "model-b", "model-c"}

func testConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models:   testModels,
		Retry:    RetryPolicy{MaxAttemptsPerModel: 3, BaseDelay: 100 * time.Millisecond},
	}
}

func newTestInvoker(t *testing.T, backend Backend, cfg *Config) (*Invoker, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	inv, err := NewInvoker(backend, nil, cfg,
		WithSleep(rec.sleep),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return inv, rec
}

func TestInvoke_RetriesSameModelWithoutPromotion(t *testing.T) {
	backend := newFakeBackend().on("model-a", fail(errOverloaded), fail(errOverloaded), succeed("done"))
	inv, rec := newTestInvoker(t, backend, testConfig())

	text, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "done", text)

	assert.Equal(t, []string{"model-a", "model-a", "model-a"}, backend.Calls())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.Delays())
	assert.Equal(t, 0, inv.Selector().Current())
}

func TestInvoke_FallsBackAndPromotes(t *testing.T) {
	backend := newFakeBackend().
		on("model-a", fail(errOverloaded), fail(errOverloaded), fail(errOverloaded)).
		on("model-b", succeed("from b"), succeed("again b"))
	inv, rec := newTestInvoker(t, backend, testConfig())

	text, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from b", text)
	assert.Equal(t, 1, inv.Selector().Current())
	assert.Equal(t, "model-b", inv.Selector().CurrentModel())
	assert.Len(t, rec.Delays(), 2)

	// next invocation starts at the promoted model
	text, err = inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "again b", text)
	assert.Equal(t, []string{"model-a", "model-a", "model-a", "model-b", "model-b"}, backend.Calls())
}

func TestInvoke_FatalErrorReturnsImmediately(t *testing.T) {
	backend := newFakeBackend().on("model-a", fail(errBadRequest))
	inv, rec := newTestInvoker(t, backend, testConfig())

	_, err := inv.Invoke(context.Background(), Request{Prompt: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBadRequest))
	assert.Equal(t, []string{"model-a"}, backend.Calls())
	assert.Empty(t, rec.Delays())
	assert.Equal(t, 0, inv.Selector().Current())
}

func TestInvoke_FatalAfterTransientStopsWithoutSwitching(t *testing.T) {
	backend := newFakeBackend().on("model-a", fail(errOverloaded), fail(errBadRequest))
	inv, rec := newTestInvoker(t, backend, testConfig())

	_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.ErrorIs(t, err, errBadRequest)
	assert.Equal(t, []string{"model-a", "model-a"}, backend.Calls())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, rec.Delays())
}

func TestInvoke_AllModelsExhausted(t *testing.T) {
	backend := newFakeBackend()
	backend.fallback = fail(errOverloaded)
	inv, rec := newTestInvoker(t, backend, testConfig())

	_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)

	var exhausted *ErrAllModelsExhausted
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 9, exhausted.Attempts)
	assert.Equal(t, testModels, exhausted.Models)
	assert.True(t, errors.Is(err, errOverloaded))

	assert.Len(t, backend.Calls(), 9)
	// two backoffs per model, none after a model's last attempt
	assert.Len(t, rec.Delays(), 6)
	assert.Equal(t, 0, inv.Selector().Current())
}

func TestInvoke_WrapsAroundFromCurrentIndex(t *testing.T) {
	backend := newFakeBackend().
		on("model-c", fail(errOverloaded)).
		on("model-a", succeed("wrapped"))
	cfg := testConfig()
	cfg.Retry.MaxAttemptsPerModel = 1

	selector, err := NewModelSelector(cfg.Models)
	require.NoError(t, err)
	require.True(t, selector.Promote(0, 2))

	inv, err := NewInvoker(backend, selector, cfg, WithSleep((&sleepRecorder{}).sleep))
	require.NoError(t, err)

	text, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "wrapped", text)
	assert.Equal(t, []string{"model-c", "model-a"}, backend.Calls())
	assert.Equal(t, 0, selector.Current())
}

func TestInvoke_CanceledDuringBackoff(t *testing.T) {
	backend := newFakeBackend()
	backend.fallback = fail(errOverloaded)
	cfg := testConfig()
	cfg.Retry.BaseDelay = time.Hour

	inv, err := NewInvoker(backend, nil, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = inv.Invoke(ctx, Request{Prompt: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"model-a"}, backend.Calls())
}

func TestInvoke_TimeoutBoundsInvocation(t *testing.T) {
	backend := newFakeBackend()
	backend.fallback = fail(errOverloaded)
	cfg := testConfig()
	cfg.Retry.BaseDelay = time.Hour
	cfg.Timeout = 20 * time.Millisecond

	inv, err := NewInvoker(backend, nil, cfg)
	require.NoError(t, err)

	_, err = inv.Invoke(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInvoke_WithBulkhead(t *testing.T) {
	backend := newFakeBackend()
	backend.fallback = succeed("fine")
	cfg := testConfig()
	cfg.MaxConcurrent = 2
	inv, _ := newTestInvoker(t, backend, cfg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
			assert.NoError(t, err)
			assert.Equal(t, "fine", text)
		}()
	}
	wg.Wait()
	assert.Len(t, backend.Calls(), 8)
}

func TestNewInvoker_ValidatesEagerly(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "no models", mutate: func(c *Config) { c.Models = nil }, field: "models"},
		{name: "empty model", mutate: func(c *Config) { c.Models = []string{"a", ""} }, field: "models"},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.MaxAttemptsPerModel = 0 }, field: "max_attempts_per_model"},
		{name: "negative delay", mutate: func(c *Config) { c.Retry.BaseDelay = -time.Second }, field: "base_delay"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "carrier-pigeon" }, field: "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			_, err := NewInvoker(newFakeBackend(), nil, cfg)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	_, err := NewInvoker(nil, nil, testConfig())
	assert.Error(t, err)
}
