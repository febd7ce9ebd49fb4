package ratelimit

import (
	"time"
)

// Rule лимит для одного действия
type Rule struct {
	Limit  int
	Window time.Duration
}

// Checker бэкенд счётчиков: in-process Limiter или общий redis-лимитер
type Checker interface {
	Check(key string, limit int, window time.Duration) Decision
}

// Metrics интерфейс метрик лимитера
type Metrics interface {
	IncRateLimited(action string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Guard проверка лимита перед мутирующей операцией
// Правила задаются по действиям, ключ бакета строится как action:identity
type Guard struct {
	checker Checker
	rules   map[string]Rule
	metrics Metrics
	logger  Logger
}

// NewGuard создает Guard; действия без правила не ограничиваются
func NewGuard(checker Checker, rules map[string]Rule, metrics Metrics, logger Logger) *Guard {
	return &Guard{
		checker: checker,
		rules:   rules,
		metrics: metrics,
		logger:  logger,
	}
}

// Allow возвращает nil, если запрос укладывается в лимит, иначе *RateLimitError
func (g *Guard) Allow(action, identity string) error {
	rule, ok := g.rules[action]
	if !ok || rule.Limit <= 0 {
		return nil
	}

	key := Key(action, identity)
	d := g.checker.Check(key, rule.Limit, rule.Window)
	if d.Allowed {
		return nil
	}

	if g.metrics != nil {
		g.metrics.IncRateLimited(action)
	}
	g.logger.Warn("RateLimit: key=%s rejected, count=%d/%d, retry after %s", key, d.Count, d.Limit, d.RetryAfter)
	return d.Err(key)
}
