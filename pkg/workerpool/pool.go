package workerpool

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrPoolBusy возвращается, когда свободный воркер не появился за отведённое время
var ErrPoolBusy = errors.New("workerpool: no free worker")

// Pool ограничивает число одновременно выполняемых операций
type Pool struct {
	sem            *semaphore.Weighted
	size           int64
	acquireTimeout time.Duration
}

// New создает пул на size воркеров
// acquireTimeout - сколько ждать свободного воркера (0 - ждать до отмены ctx)
func New(size int, acquireTimeout time.Duration) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:            semaphore.NewWeighted(int64(size)),
		size:           int64(size),
		acquireTimeout: acquireTimeout,
	}
}

// Do выполняет fn на одном из воркеров пула
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	acquireCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrPoolBusy
	}
	defer p.sem.Release(1)

	return fn(ctx)
}

// Size возвращает размер пула
func (p *Pool) Size() int {
	return int(p.size)
}
