package storage

import (
	"errors"

	"github.com/lib/pq"
)

// pgLockNotAvailable SQLSTATE lock_not_available (сработал lock_timeout)
const pgLockNotAvailable = "55P03"

// IsLockNotAvailable сообщает, что PostgreSQL не дождался блокировки строки
func IsLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgLockNotAvailable
	}
	return false
}
