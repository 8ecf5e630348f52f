package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.0-flash"}, config.Models)
	assert.Equal(t, 3, config.Retry.MaxAttemptsPerModel)
	assert.Equal(t, time.Second, config.Retry.BaseDelay)
	assert.Equal(t, 2*time.Minute, config.Timeout)
	assert.NoError(t, config.Validate())
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttemptsPerModel: 5, BaseDelay: time.Second}

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, time.Duration(0), RetryPolicy{}.Delay(3))
	assert.Greater(t, p.Delay(100), time.Duration(0))
}

func TestWithModels(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModels("one", "two")

	assert.Equal(t, []string{"one", "two"}, custom.Models)
	assert.Len(t, config.Models, 3)
	assert.Equal(t, config.Retry, custom.Retry)
}

func TestDefaultModels(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", DefaultModels(ProviderOpenAI)[0])
	assert.Equal(t, "gemini-2.5-flash", DefaultModels(ProviderGemini)[0])
}

func TestNewBackend_InvalidConfig(t *testing.T) {
	_, err := NewBackend(context.Background(), &Config{Provider: ProviderOpenAI})
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "models", cfgErr.Field)
}
