package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimitExceeded возвращается, когда лимит запросов исчерпан
var ErrRateLimitExceeded = errors.New("ratelimit: rate limit exceeded")

// RateLimitError отказ лимитера с подсказкой, когда можно повторить запрос
type RateLimitError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: key=%s, retry after %s", ErrRateLimitExceeded, e.Key, e.RetryAfter)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrRateLimitExceeded)
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}
