package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budgetapi/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	_, ok := c.Get("alice|2025")
	assert.False(t, ok)

	c.Set("alice|2025", 42)
	v, ok := c.Get("alice|2025")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	c.Set("alice|2025", 43)
	v, _ = c.Get("alice|2025")
	assert.Equal(t, 43, v)
	assert.Equal(t, 1, c.Size())

	assert.Equal(t, Stats{Size: 1, Hits: 2, Misses: 1}, c.Stats())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("a", 1)
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", 2)
	clock.t = clock.t.Add(31 * time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok, "a expired")
	assert.Equal(t, 1, c.Size())

	clock.t = clock.t.Add(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 0, c.Size())
}

func TestManager_Sweep(t *testing.T) {
	c, clock := newTestCache(4, time.Second)
	c.Set("a", 1)
	c.Set("b", 2)

	m := NewManager(log.Discard())
	m.Register(c)

	assert.Equal(t, 0, m.Sweep())
	clock.t = clock.t.Add(2 * time.Second)
	assert.Equal(t, 2, m.Sweep())
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(log.Discard())
	m.Stop()
	m.Stop()

	m2 := NewManager(log.Discard())
	m2.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m2.Stop()
	m2.Stop()
}

func TestManager_StartAfterStopIsNoop(t *testing.T) {
	m := NewManager(log.Discard())
	m.Stop()
	m.StartCleanup(time.Millisecond)
	m.Stop()
}

func TestManager_ConcurrentStartStop(t *testing.T) {
	m := NewManager(log.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.StartCleanup(time.Millisecond)
		}()
		go func() {
			defer wg.Done()
			m.Stop()
		}()
	}
	wg.Wait()

	select {
	case <-m.cleanupDone:
	default:
		t.Fatal("cleanup goroutine still running after Stop")
	}
}
