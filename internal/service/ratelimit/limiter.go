package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultRetryAfter подсказка повтора, если остаток окна неизвестен
const DefaultRetryAfter = 60 * time.Second

// Default cache bounds
const (
	DefaultMaxEntries = 100_000
	DefaultBucketTTL  = time.Hour
)

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Decision результат проверки лимита
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	Remaining  int
	RetryAfter time.Duration // заполняется только при отказе
}

// Err возвращает *RateLimitError для отказа и nil для разрешённого запроса
func (d Decision) Err(key string) error {
	if d.Allowed {
		return nil
	}
	return &RateLimitError{Key: key, RetryAfter: d.RetryAfter}
}

// bucket счётчик фиксированного окна
type bucket struct {
	count     int
	startedAt time.Time
}

// Limiter счётчик запросов с фиксированным окном в памяти процесса
// Бакеты вытесняются по TTL, при достижении maxEntries вытесняется бакет с самой старой записью
type Limiter struct {
	mu           sync.Mutex
	buckets      *expirable.LRU[string, bucket]
	timeProvider TimeProvider
}

// NewLimiter создает лимитер
// ttl должен быть не меньше самого длинного окна, иначе окно сбросится раньше срока
func NewLimiter(maxEntries int, ttl time.Duration, timeProvider TimeProvider) *Limiter {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultBucketTTL
	}
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Limiter{
		buckets:      expirable.NewLRU[string, bucket](maxEntries, nil, ttl),
		timeProvider: timeProvider,
	}
}

// Allow сообщает, укладывается ли очередной запрос по ключу в limit за window
func (l *Limiter) Allow(key string, limit int, window time.Duration) bool {
	return l.Check(key, limit, window).Allowed
}

// Check считает запрос и возвращает подробное решение
func (l *Limiter) Check(key string, limit int, window time.Duration) Decision {
	now := l.timeProvider.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Peek не двигает запись в LRU: вытеснение идёт по времени последней записи (Add)
	b, ok := l.buckets.Peek(key)
	if !ok || now.Sub(b.startedAt) >= window {
		b = bucket{startedAt: now}
	}
	b.count++
	l.buckets.Add(key, b)

	d := Decision{
		Allowed:   b.count <= limit,
		Count:     b.count,
		Limit:     limit,
		Remaining: limit - b.count,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = retryAfter(b.startedAt.Add(window).Sub(now))
	}
	return d
}

// Reset удаляет бакет ключа
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets.Remove(key)
}

// Len возвращает количество живых бакетов
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buckets.Len()
}

func retryAfter(remaining time.Duration) time.Duration {
	if remaining <= 0 {
		return DefaultRetryAfter
	}
	// округляем вверх до секунды, Retry-After передаётся в целых секундах
	if rem := remaining % time.Second; rem != 0 {
		remaining += time.Second - rem
	}
	return remaining
}
