package ids

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsMonotonic(t *testing.T) {
	prev := New()
	require.True(t, Valid(prev))
	for i := 0; i < 1000; i++ {
		next := New()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestNewAtSameInstantStillOrders(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewAt(at)
	b := NewAt(at)
	require.Less(t, a, b)
	require.False(t, Valid("not-a-ulid"))
}
