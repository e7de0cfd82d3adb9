// Package ratelimit enforces per-scope request quotas keyed by caller.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Throttle scopes used by the API.
const (
	ScopeLogin      = "login"
	ScopeTaskCreate = "task_create"
)

// Rate is a quota of Limit requests per Window.
type Rate struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter checks and consumes quota for key in scope. Scopes without a
// configured rate are always allowed.
type Limiter interface {
	Allow(ctx context.Context, scope, key string) (Decision, error)
}

// ParseRate parses "N/unit" where unit is s, m, h, d or the long forms
// second, minute, hour, day.
func ParseRate(raw string) (Rate, error) {
	num, unit, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Rate{}, fmt.Errorf("ratelimit: rate %q must look like N/unit", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("ratelimit: rate %q has an invalid count", raw)
	}
	window, err := parseUnit(strings.TrimSpace(unit))
	if err != nil {
		return Rate{}, fmt.Errorf("ratelimit: rate %q: %w", raw, err)
	}
	return Rate{Limit: n, Window: window}, nil
}

// ParseRates parses a scope to rate map.
func ParseRates(raw map[string]string) (map[string]Rate, error) {
	rates := make(map[string]Rate, len(raw))
	for scope, r := range raw {
		rate, err := ParseRate(r)
		if err != nil {
			return nil, err
		}
		rates[scope] = rate
	}
	return rates, nil
}

func parseUnit(unit string) (time.Duration, error) {
	switch strings.ToLower(unit) {
	case "s", "sec", "second":
		return time.Second, nil
	case "m", "min", "minute":
		return time.Minute, nil
	case "h", "hour":
		return time.Hour, nil
	case "d", "day":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown unit %q", unit)
}

func bucketKey(prefix, scope, key string) string {
	return prefix + scope + ":" + key
}
