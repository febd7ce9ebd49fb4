package redislimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m04kA/SMC-RoomInventory/internal/service/ratelimit"
)

// DefaultTimeout ограничение на один вызов Check
const DefaultTimeout = 200 * time.Millisecond

const keyPrefix = "ratelimit:"

// Cmdable команды redis, которые использует лимитер (*redis.Client их реализует)
type Cmdable interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Limiter счётчик с фиксированным окном, общий для всех инстансов сервиса
// Окно начинается с первого INCR и живёт ровно window (EXPIRE ключа)
type Limiter struct {
	client  Cmdable
	timeout time.Duration
	logger  Logger
}

// NewLimiter создает redis-лимитер
func NewLimiter(client Cmdable, timeout time.Duration, logger Logger) *Limiter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Limiter{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// NewClient создает клиент redis
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Allow сообщает, укладывается ли запрос в лимит
func (l *Limiter) Allow(key string, limit int, window time.Duration) bool {
	return l.Check(key, limit, window).Allowed
}

// Check увеличивает счётчик ключа и возвращает решение
// При недоступности redis запрос пропускается: лимитер защищает от злоупотреблений, а не квотирует
func (l *Limiter) Check(key string, limit int, window time.Duration) ratelimit.Decision {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	redisKey := keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("RedisLimiter: INCR key=%s failed: %v", redisKey, err)
		return failOpen(limit)
	}

	ttl := window
	if count == 1 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			l.logger.Error("RedisLimiter: PEXPIRE key=%s failed: %v", redisKey, err)
		}
	} else {
		ttl, err = l.client.PTTL(ctx, redisKey).Result()
		if err != nil {
			l.logger.Warn("RedisLimiter: PTTL key=%s failed: %v", redisKey, err)
			ttl = 0
		} else if ttl < 0 {
			// ключ без срока жизни: предыдущий PEXPIRE не прошёл
			if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
				l.logger.Error("RedisLimiter: PEXPIRE key=%s failed: %v", redisKey, err)
			}
			ttl = window
		}
	}

	d := ratelimit.Decision{
		Allowed:   int(count) <= limit,
		Count:     int(count),
		Limit:     limit,
		Remaining: limit - int(count),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = retryAfter(ttl)
	}
	return d
}

func failOpen(limit int) ratelimit.Decision {
	return ratelimit.Decision{Allowed: true, Limit: limit, Remaining: limit}
}

func retryAfter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ratelimit.DefaultRetryAfter
	}
	if rem := ttl % time.Second; rem != 0 {
		ttl += time.Second - rem
	}
	return ttl
}
