// Package config loads service configuration from a YAML or JSON file and
// the environment, and validates it before anything starts.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/skillforge/internal/llm"
	"gopkg.in/yaml.v3"
)

// MissingConfigurationError reports a required setting that is absent.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

// Config is the full service configuration.
type Config struct {
	Port          int         `yaml:"port"`
	LogLevel      string      `yaml:"log_level"`
	DatabaseURL   string      `yaml:"database_url"`
	YouTubeAPIKey string      `yaml:"youtube_api_key"`
	Search        WebSearch   `yaml:"search"`
	LLM           LLMSettings `yaml:"llm"`
	Tutor         TutorConfig `yaml:"tutor"`
}

// LLMSettings configures the text generation backend and its retry behavior.
type LLMSettings struct {
	Provider      string        `yaml:"provider"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Models        []string      `yaml:"models"`
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	Temperature   float32       `yaml:"temperature"`
}

// WebSearch holds Google Programmable Search credentials. Both must be set
// for article links to be resolved to real pages.
type WebSearch struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// TutorConfig sizes generated study material.
type TutorConfig struct {
	QuizQuestions int `yaml:"quiz_questions"`
	Flashcards    int `yaml:"flashcards"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	llmDefaults := llm.DefaultGeminiConfig()
	return &Config{
		Port:     8080,
		LogLevel: "info",
		LLM: LLMSettings{
			Provider:      string(llmDefaults.Provider),
			MaxAttempts:   llmDefaults.Retry.MaxAttemptsPerModel,
			BaseDelay:     llmDefaults.Retry.BaseDelay,
			MaxConcurrent: llmDefaults.MaxConcurrent,
			Timeout:       llmDefaults.Timeout,
			Temperature:   llmDefaults.Temperature,
		},
		Tutor: TutorConfig{QuizQuestions: 5, Flashcards: 5},
	}
}

// Load reads the file at path (YAML or JSON; empty path skips the file),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// JSON is valid YAML, so one decoder handles both.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("DATABASE_URL", &c.DatabaseURL)
	str("YOUTUBE_API_KEY", &c.YouTubeAPIKey)
	str("GOOGLE_SEARCH_API_KEY", &c.Search.APIKey)
	str("GOOGLE_SEARCH_CX", &c.Search.EngineID)
	str("LOG_LEVEL", &c.LogLevel)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)

	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderOpenAI:
		str("OPENAI_API_KEY", &c.LLM.APIKey)
	default:
		str("GEMINI_API_KEY", &c.LLM.APIKey)
	}

	if v, ok := lookup("LLM_MODELS"); ok && strings.TrimSpace(v) != "" {
		c.LLM.Models = splitList(v)
	}

	for _, f := range []func() error{
		func() error { return integer("PORT", &c.Port) },
		func() error { return integer("LLM_MAX_ATTEMPTS", &c.LLM.MaxAttempts) },
		func() error { return integer("LLM_MAX_CONCURRENT", &c.LLM.MaxConcurrent) },
		func() error { return duration("LLM_BASE_DELAY", &c.LLM.BaseDelay) },
		func() error { return duration("LLM_TIMEOUT", &c.LLM.Timeout) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks value ranges. Required keys are checked by RequireServe.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Tutor.QuizQuestions < 0 || c.Tutor.Flashcards < 0 {
		return fmt.Errorf("config error: tutor sizes must be non-negative")
	}
	if _, err := c.LLMConfig(); err != nil {
		return err
	}
	return nil
}

// RequireServe checks the settings the HTTP server cannot start without.
func (c *Config) RequireServe() error {
	if c.DatabaseURL == "" {
		return &MissingConfigurationError{Key: "DATABASE_URL"}
	}
	return c.RequireLLM()
}

// RequireLLM checks that a model API key is configured.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	if llm.Provider(c.LLM.Provider) == llm.ProviderOpenAI {
		return &MissingConfigurationError{Key: "OPENAI_API_KEY"}
	}
	return &MissingConfigurationError{Key: "GEMINI_API_KEY"}
}

// LLMConfig converts the settings into a validated llm.Config. Models
// default to the provider's fallback chain.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider := llm.Provider(c.LLM.Provider)
	models := c.LLM.Models
	if len(models) == 0 {
		models = llm.DefaultModels(provider)
	}
	cfg := &llm.Config{
		Provider: provider,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
		Models:   models,
		Retry: llm.RetryPolicy{
			MaxAttemptsPerModel: c.LLM.MaxAttempts,
			BaseDelay:           c.LLM.BaseDelay,
		},
		MaxConcurrent: c.LLM.MaxConcurrent,
		Timeout:       c.LLM.Timeout,
		Temperature:   c.LLM.Temperature,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLogLevel maps debug, info, warn or error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config error: invalid log level %q", s)
	}
	return level, nil
}
