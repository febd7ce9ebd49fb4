package roomlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	acquired int
	timedOut int
}

func (o *recordingObserver) ObserveLockWait(_ time.Duration, acquired bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if acquired {
		o.acquired++
	} else {
		o.timedOut++
	}
}

func TestTable_SerializesSameRoom(t *testing.T) {
	table := NewTable(time.Second, nil)

	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := table.Acquire(context.Background(), 1)
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxSeen)
				if n <= cur || atomic.CompareAndSwapInt32(&maxSeen, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, 0, table.Len())
}

func TestTable_DifferentRoomsDoNotBlock(t *testing.T) {
	table := NewTable(50*time.Millisecond, nil)

	release1, err := table.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release1()

	release2, err := table.Acquire(context.Background(), 2)
	require.NoError(t, err)
	release2()
}

func TestTable_Timeout(t *testing.T) {
	obs := &recordingObserver{}
	table := NewTable(20*time.Millisecond, obs)

	release, err := table.Acquire(context.Background(), 1)
	require.NoError(t, err)

	_, err = table.Acquire(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	// повторный release ничего не ломает
	release()

	release, err = table.Acquire(context.Background(), 1)
	require.NoError(t, err)
	release()

	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 2, obs.acquired)
	assert.Equal(t, 1, obs.timedOut)
}

func TestTable_ParentContextCancelled(t *testing.T) {
	table := NewTable(time.Second, nil)

	release, err := table.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = table.Acquire(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
