// Package ratelimit limits requests per client and endpoint tier.
package ratelimit

import (
	"context"
	"errors"
	"time"

	fortify "github.com/felixgeelhaar/fortify/ratelimit"
)

// Info describes the limit applied to a request.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

// Limiter keeps one fortify rate limiter per tier, keyed by client.
type Limiter struct {
	config   *Config
	limiters map[string]fortify.RateLimiter
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{config: config, limiters: make(map[string]fortify.RateLimiter)}
	if !config.Enabled {
		return l
	}

	l.add(TierDefault, config.Default)
	for name, tier := range config.Tiers {
		l.add(name, tier)
	}
	return l
}

func (l *Limiter) add(name string, tier TierConfig) {
	if tier.Limit <= 0 || tier.Window <= 0 {
		return
	}
	burst := tier.Burst
	if burst <= 0 {
		burst = tier.Limit
	}
	l.limiters[name] = fortify.New(&fortify.Config{
		Rate:     tier.Limit,
		Burst:    burst,
		Interval: tier.Window,
	})
}

func (l *Limiter) tier(name string) TierConfig {
	if name == TierDefault {
		return l.config.Default
	}
	return l.config.Tiers[name]
}

// Allow reports whether a request from clientID to method+path may proceed.
func (l *Limiter) Allow(ctx context.Context, clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}
	if path == "/health" && method == "GET" {
		return true, Info{Allowed: true}
	}

	name := MatchEndpoint(path, method, l.config.Endpoints)
	if name == "" {
		name = TierDefault
	}
	limiter, ok := l.limiters[name]
	if !ok {
		// unlimited tier
		return true, Info{Allowed: true, Tier: name}
	}

	tier := l.tier(name)
	info := Info{
		Allowed: limiter.Allow(ctx, name+":"+clientID),
		Tier:    name,
		Limit:   tier.Limit,
		Window:  tier.Window,
	}
	if !info.Allowed {
		// time for one token to refill
		info.RetryAfter = tier.Window / time.Duration(tier.Limit)
		if info.RetryAfter < time.Second {
			info.RetryAfter = time.Second
		}
	}
	return info.Allowed, info
}

// Stop releases the underlying limiters.
func (l *Limiter) Stop() error {
	var errs []error
	for _, rl := range l.limiters {
		if err := rl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
