package roomlock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout ожидание блокировки комнаты по умолчанию
const DefaultTimeout = 3 * time.Second

// Observer получает время ожидания блокировки
type Observer interface {
	ObserveLockWait(d time.Duration, acquired bool)
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Table таблица блокировок комнат в памяти процесса
// Записи создаются при первом обращении и удаляются, когда ими никто не пользуется
type Table struct {
	mu       sync.Mutex
	entries  map[int64]*entry
	timeout  time.Duration
	observer Observer
}

// NewTable создает таблицу блокировок
func NewTable(timeout time.Duration, observer Observer) *Table {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Table{
		entries:  make(map[int64]*entry),
		timeout:  timeout,
		observer: observer,
	}
}

// Acquire захватывает блокировку комнаты
// Возвращает ErrLockTimeout, если блокировка не получена за timeout
func (t *Table) Acquire(ctx context.Context, roomID int64) (release func(), err error) {
	start := time.Now()
	e := t.ref(roomID)

	waitCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	select {
	case e.sem <- struct{}{}:
	case <-waitCtx.Done():
		t.unref(roomID, e)
		t.observe(time.Since(start), false)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("roomlock: room=%d: %w", roomID, ctx.Err())
		}
		return nil, fmt.Errorf("%w: room=%d, waited %s", ErrLockTimeout, roomID, t.timeout)
	}

	t.observe(time.Since(start), true)

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			t.unref(roomID, e)
		})
	}, nil
}

// Len возвращает количество записей в таблице
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) ref(roomID int64) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[roomID]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		t.entries[roomID] = e
	}
	e.refs++
	return e
}

func (t *Table) unref(roomID int64, e *entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(t.entries, roomID)
	}
}

func (t *Table) observe(d time.Duration, acquired bool) {
	if t.observer != nil {
		t.observer.ObserveLockWait(d, acquired)
	}
}
