package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	require.True(t, rl.get("10.0.0.1").Allow())
	require.False(t, rl.get("10.0.0.1").Allow())
	require.True(t, rl.get("10.0.0.2").Allow())

	now = now.Add(limiterIdleTTL + time.Minute)
	rl.get("10.0.0.3")
	require.Len(t, rl.clients, 1)
}
