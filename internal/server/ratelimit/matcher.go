package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Patterns match as path suffixes so a fixed trailing
// segment (e.g. "/recommendations/generate") matches regardless of the
// user ID prefix. Returns nil when no configuration matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are unlimited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{
			Limit:  0,
			Window: 0,
			Burst:  0,
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path || strings.HasSuffix(path, config.Path) {
			return config
		}
	}

	return nil
}
