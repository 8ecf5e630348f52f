package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeBackend answers from per-model scripts. An empty script returns the
// fallback result.
type fakeBackend struct {
	mu       sync.Mutex
	scripts  map[string][]fakeResult
	fallback fakeResult
	calls    []string
	requests []Request
}

type fakeResult struct {
	text string
	err  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{scripts: make(map[string][]fakeResult)}
}

func (f *fakeBackend) on(model string, results ...fakeResult) *fakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[model] = append(f.scripts[model], results...)
	return f
}

func (f *fakeBackend) Generate(_ context.Context, model string, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, model)
	f.requests = append(f.requests, req)

	script := f.scripts[model]
	if len(script) == 0 {
		return f.fallback.text, f.fallback.err
	}
	next := script[0]
	f.scripts[model] = script[1:]
	return next.text, next.err
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// sleepRecorder records backoff delays without waiting.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

var (
	errOverloaded = errors.New("503 Service Unavailable: model is overloaded")
	errBadRequest = errors.New("400 invalid argument: prompt is empty")
)

func succeed(text string) fakeResult { return fakeResult{text: text} }
func fail(err error) fakeResult      { return fakeResult{err: err} }
