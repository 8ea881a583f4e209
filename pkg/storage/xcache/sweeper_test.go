package xcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, Config{TTL: time.Minute}, WithClock(clock.Now))
	events := recordEvents(c)

	for i := range 5 {
		require.True(t, c.Set(fmt.Sprintf("short%d", i), i, TTL(time.Second)))
	}
	require.True(t, c.Set("long", "v"))
	clock.Advance(time.Second)

	assert.Equal(t, 5, c.Sweep())
	assert.Equal(t, []string{"long"}, c.Keys())
	assert.Equal(t, 0, c.Sweep())

	evicts := eventsOf(events(), EventEvict)
	require.Len(t, evicts, 5)
	for _, e := range evicts {
		assert.Equal(t, ReasonExpired, e.Reason)
	}
	s := c.Size()
	assert.Equal(t, uint64(5), s.Expirations)
	assert.Equal(t, int64(len(`"v"`)), s.Bytes)
}

func TestSweep_HeapTracksOverwriteAndDelete(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, Config{TTL: time.Minute}, WithClock(clock.Now))

	require.True(t, c.Set("a", 1, TTL(time.Second)))
	require.True(t, c.Set("a", 2, TTL(time.Hour)))
	require.True(t, c.Set("b", 3, TTL(time.Second)))
	c.Delete("b")
	clock.Advance(2 * time.Second)

	assert.Equal(t, 0, c.Sweep())
	assert.True(t, c.Has("a"))
}

func TestSweeper_Background(t *testing.T) {
	c := newTestCache(t, Config{TTL: 20 * time.Millisecond, SweepInterval: 10 * time.Millisecond})
	for i := range 10 {
		require.True(t, c.Set(fmt.Sprintf("k%d", i), i))
	}

	require.Eventually(t, func() bool { return c.Size().Entries == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(10), c.Size().Expirations)
}

func TestSweep_Closed(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, Config{}, WithClock(clock.Now))
	require.True(t, c.Set("k", 1, TTL(time.Second)))
	c.Close()
	clock.Advance(time.Minute)
	assert.Equal(t, 0, c.Sweep())
}
