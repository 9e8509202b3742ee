package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionsGetReturnsSameCart(t *testing.T) {
	s := NewSessions()
	first := s.Get("sess-1")
	first.Cart.Add(item("a", 10, 5), 2)

	again := s.Get("sess-1")
	require.Same(t, first.Cart, again.Cart)
	require.Equal(t, 2, again.Cart.TotalItems())

	other := s.Get("sess-2")
	require.True(t, other.Cart.IsEmpty())
	require.Equal(t, 2, s.Len())
}

func TestSessionsPruneDropsIdle(t *testing.T) {
	s := NewSessions()
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Get("stale")
	clock = clock.Add(90 * time.Minute)
	s.Get("fresh")
	clock = clock.Add(45 * time.Minute)

	removed := s.Prune(time.Hour)

	require.Equal(t, 1, removed)
	require.Equal(t, 1, s.Len())
}

func TestSessionsDrop(t *testing.T) {
	s := NewSessions()
	s.Get("sess-1").Cart.Add(item("a", 10, 5), 1)

	s.Drop("sess-1")

	require.Zero(t, s.Len())
	require.True(t, s.Get("sess-1").Cart.IsEmpty())
}
