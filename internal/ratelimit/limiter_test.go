package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMapLimiterPerKeyBuckets(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.True(t, l.Allow("10.0.0.1", now))
	require.True(t, l.Allow("10.0.0.1", now))
	require.False(t, l.Allow("10.0.0.1", now))
	require.True(t, l.Allow("10.0.0.2", now), "buckets are independent")

	require.True(t, l.Allow("10.0.0.1", now.Add(time.Second)), "tokens refill over time")
}

func TestMapLimiterEvictsIdleKeys(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	l.Allow("a", now)
	l.Allow("b", now.Add(50*time.Second))
	require.Equal(t, 2, l.Len())

	l.Sweep(now.Add(90 * time.Second))
	require.Equal(t, 1, l.Len())
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *MapLimiter
	require.True(t, l.Allow("x", time.Now()))
	require.Zero(t, l.Len())
	require.Nil(t, New(0, 1, 0))
	require.Nil(t, New(1, 0, 0))

	l = New(1, 1, 0)
	require.True(t, l.Allow("  ", time.Now()))
	require.Zero(t, l.Len())
}
