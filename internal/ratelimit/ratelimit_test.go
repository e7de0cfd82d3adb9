package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	r, err := ParseRate("5/m")
	require.NoError(t, err)
	require.Equal(t, Rate{Limit: 5, Window: time.Minute}, r)

	r, err = ParseRate(" 100 / day ")
	require.NoError(t, err)
	require.Equal(t, Rate{Limit: 100, Window: 24 * time.Hour}, r)

	for _, bad := range []string{"5", "x/m", "0/m", "5/week", ""} {
		_, err := ParseRate(bad)
		require.Error(t, err, bad)
	}
}

func TestParseRates(t *testing.T) {
	rates, err := ParseRates(map[string]string{ScopeLogin: "3/s", ScopeTaskCreate: "10/h"})
	require.NoError(t, err)
	require.Equal(t, 3, rates[ScopeLogin].Limit)
	require.Equal(t, time.Hour, rates[ScopeTaskCreate].Window)

	_, err = ParseRates(map[string]string{ScopeLogin: "bad"})
	require.Error(t, err)
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	l := NewMemoryLimiter(map[string]Rate{ScopeLogin: {Limit: 2, Window: time.Minute}}, clock)
	ctx := context.Background()

	d, err := l.Allow(ctx, ScopeLogin, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)

	d, _ = l.Allow(ctx, ScopeLogin, "1.2.3.4")
	require.True(t, d.Allowed)

	d, _ = l.Allow(ctx, ScopeLogin, "1.2.3.4")
	require.False(t, d.Allowed)
	require.Equal(t, time.Minute, d.RetryAfter)

	// keys are independent
	d, _ = l.Allow(ctx, ScopeLogin, "5.6.7.8")
	require.True(t, d.Allowed)

	now = now.Add(time.Minute)
	d, _ = l.Allow(ctx, ScopeLogin, "1.2.3.4")
	require.True(t, d.Allowed)
}

func TestMemoryLimiter_UnknownScopeAllowed(t *testing.T) {
	l := NewMemoryLimiter(nil, nil)
	for i := 0; i < 10; i++ {
		d, err := l.Allow(context.Background(), "anything", "k")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
}

func TestBucketKey(t *testing.T) {
	require.Equal(t, "throttle:login:u-1", bucketKey("throttle:", ScopeLogin, "u-1"))
}
