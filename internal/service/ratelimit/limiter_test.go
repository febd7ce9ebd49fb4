package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLimiter_SixthCallRejectedThenReset(t *testing.T) {
	clock := newClock()
	l := NewLimiter(100, 2*time.Hour, clock)
	key := Key(ActionReserve, "user:42")

	for i := 1; i <= 5; i++ {
		assert.True(t, l.Allow(key, 5, time.Hour), "call %d", i)
	}

	d := l.Check(key, 5, time.Hour)
	assert.False(t, d.Allowed)
	assert.Equal(t, 6, d.Count)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Hour, d.RetryAfter)

	clock.Advance(59 * time.Minute)
	assert.False(t, l.Allow(key, 5, time.Hour))

	clock.Advance(time.Minute)
	d = l.Check(key, 5, time.Hour)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 4, d.Remaining)
}

func TestLimiter_RetryAfterRoundsUp(t *testing.T) {
	clock := newClock()
	l := NewLimiter(10, time.Hour, clock)

	assert.True(t, l.Allow("k", 1, time.Minute))
	clock.Advance(10*time.Second + 300*time.Millisecond)

	d := l.Check("k", 1, time.Minute)
	require.False(t, d.Allowed)
	assert.Equal(t, 50*time.Second, d.RetryAfter)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLimiter(10, time.Hour, newClock())

	assert.True(t, l.Allow("reserve:user:1", 1, time.Minute))
	assert.False(t, l.Allow("reserve:user:1", 1, time.Minute))
	assert.True(t, l.Allow("reserve:user:2", 1, time.Minute))
	assert.True(t, l.Allow("cancel:user:1", 1, time.Minute))
}

func TestLimiter_EvictsOldestWrite(t *testing.T) {
	l := NewLimiter(2, time.Hour, newClock())

	l.Allow("a", 1, time.Minute)
	l.Allow("b", 1, time.Minute)
	// запись в a делает её свежее b
	l.Allow("a", 1, time.Minute)
	l.Allow("c", 1, time.Minute)

	assert.Equal(t, 2, l.Len())
	// a жив и продолжает считать в своём окне
	assert.Equal(t, 3, l.Check("a", 10, time.Minute).Count)
	// b вытеснен, счётчик начинается заново
	assert.Equal(t, 1, l.Check("b", 10, time.Minute).Count)
}

func TestLimiter_ConcurrentCallsCountExactly(t *testing.T) {
	l := NewLimiter(10, time.Hour, newClock())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("burst", 20, time.Minute) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, allowed)
}

func TestLimiter_Reset(t *testing.T) {
	l := NewLimiter(10, time.Hour, newClock())
	assert.True(t, l.Allow("k", 1, time.Minute))
	assert.False(t, l.Allow("k", 1, time.Minute))

	l.Reset("k")
	assert.True(t, l.Allow("k", 1, time.Minute))
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingMetrics struct{ blocked map[string]int }

func (m *countingMetrics) IncRateLimited(action string) { m.blocked[action]++ }

func TestGuard_Allow(t *testing.T) {
	clock := newClock()
	m := &countingMetrics{blocked: map[string]int{}}
	g := NewGuard(NewLimiter(10, time.Hour, clock), map[string]Rule{
		ActionReserve: {Limit: 2, Window: time.Minute},
	}, m, nopLogger{})

	require.NoError(t, g.Allow(ActionReserve, "ip:10.0.0.1"))
	require.NoError(t, g.Allow(ActionReserve, "ip:10.0.0.1"))

	err := g.Allow(ActionReserve, "ip:10.0.0.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)

	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, time.Minute, rlErr.RetryAfter)
	assert.Equal(t, "reserve:ip:10.0.0.1", rlErr.Key)
	assert.Equal(t, 1, m.blocked[ActionReserve])

	// для действия без правила лимита нет
	for i := 0; i < 10; i++ {
		require.NoError(t, g.Allow(ActionStatus, "ip:10.0.0.1"), fmt.Sprint(i))
	}
}
