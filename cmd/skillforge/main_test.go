package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonathan/skillforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command in-process with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel, servePort = "", "", 0
	roadmapJSON, progressJSON = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// clearEnv blanks the variables the config layer reads.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODELS",
		"LOG_LEVEL", "PORT", "YOUTUBE_API_KEY", "GOOGLE_SEARCH_API_KEY", "GOOGLE_SEARCH_CX", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func TestProgressCommand(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "progress", "250")
	require.NoError(t, err)
	assert.Contains(t, out, "Level:  2")
	assert.Contains(t, out, "✓ Novice Explorer")
}

func TestProgressCommand_JSON(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "progress", "1000", "--json")
	require.NoError(t, err)

	var got struct {
		Status struct {
			Level int `json:"level"`
		} `json:"status"`
		Badges []string `json:"badges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Status.Level)
	assert.Len(t, got.Badges, 3)
}

func TestProgressCommand_InvalidPoints(t *testing.T) {
	clearEnv(t)

	for _, arg := range []string{"abc", "1.5"} {
		_, err := execute(t, "progress", arg)
		require.Error(t, err, arg)
		assert.Contains(t, err.Error(), "non-negative integer")
	}
}

func TestRoadmapCommand_RequiresAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "roadmap", "Go")
	var missing *config.MissingConfigurationError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "GEMINI_API_KEY", missing.Key)
}

func TestServeCommand_RequiresDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")

	_, err := execute(t, "serve")
	var missing *config.MissingConfigurationError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "DATABASE_URL", missing.Key)
}

func TestServeCommand_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("DATABASE_URL", "postgres://localhost/skillforge")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "migrate")
	var missing *config.MissingConfigurationError
	require.True(t, errors.As(err, &missing))
}

func TestInvalidLogLevel(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "progress", "10", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
