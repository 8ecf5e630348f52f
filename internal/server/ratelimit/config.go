package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier names
const (
	TierAI      = "ai"
	TierAuth    = "auth"
	TierWrite   = "write"
	TierDefault = "default"
)

// EndpointConfig assigns requests matching Path and Method to a tier.
//
// Path segments may be "*" to match any single segment; a Path ending in "/"
// matches every path below it.
type EndpointConfig struct {
	Tier   string
	Path   string
	Method string
}

// TierConfig is the request budget of one tier.
type TierConfig struct {
	Limit  int           // Requests per window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled   bool
	Default   TierConfig
	Tiers     map[string]TierConfig
	Endpoints []EndpointConfig
	Whitelist map[string]bool
	Blacklist map[string]bool
}

// DefaultConfig returns the built-in tiers: model-backed endpoints are the
// strictest, then auth, then writes; everything else gets the default budget.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Default: TierConfig{Limit: 1000, Window: time.Minute},
		Tiers: map[string]TierConfig{
			TierAI:    {Limit: 60, Window: time.Hour, Burst: 10},
			TierAuth:  {Limit: 10, Window: time.Minute, Burst: 5},
			TierWrite: {Limit: 120, Window: time.Minute, Burst: 30},
		},
		Endpoints: DefaultEndpointConfigs(),
		Whitelist: map[string]bool{},
		Blacklist: map[string]bool{},
	}
}

// DefaultEndpointConfigs maps the API routes to tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model calls
		{Tier: TierAI, Path: "/roadmaps", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/subtopics/*/resources", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/subtopics/*/flashcards", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/modules/*/quiz", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/feedback", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/analysis", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/community", Method: "POST"},
		{Tier: TierAI, Path: "/roadmaps/*/chat", Method: "POST"},

		// Tier 2: credentials
		{Tier: TierAuth, Path: "/auth/register", Method: "POST"},
		{Tier: TierAuth, Path: "/auth/login", Method: "POST"},
		{Tier: TierAuth, Path: "/me/password", Method: "PUT"},

		// Tier 3: writes
		{Tier: TierWrite, Path: "/roadmaps/", Method: "POST"},
		{Tier: TierWrite, Path: "/roadmaps/", Method: "PATCH"},
		{Tier: TierWrite, Path: "/roadmaps/", Method: "DELETE"},

		// Reads use the default tier; /health is unlimited (see MatchEndpoint)
	}
}

// LoadConfig reads overrides from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", true)
	cfg.Default.Limit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.Default.Limit)
	cfg.Default.Window = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.Default.Window)

	ai := cfg.Tiers[TierAI]
	ai.Limit = getEnvInt("RATE_LIMIT_AI_LIMIT", ai.Limit)
	ai.Window = getEnvDuration("RATE_LIMIT_AI_WINDOW", ai.Window)
	cfg.Tiers[TierAI] = ai

	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
