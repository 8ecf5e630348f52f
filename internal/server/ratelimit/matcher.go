package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the tier for a request, or "" when no endpoint
// config matches. Full-path matches (including "*" segments) win over
// prefix matches; within each kind the first config wins.
func MatchEndpoint(path, method string, configs []EndpointConfig) string {
	for _, c := range configs {
		if c.Method == method && !strings.HasSuffix(c.Path, "/") && matchSegments(c.Path, path) {
			return c.Tier
		}
	}
	for _, c := range configs {
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c.Tier
		}
	}
	return ""
}

func matchSegments(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != xs[i] {
			return false
		}
	}
	return true
}
