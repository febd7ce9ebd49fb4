package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsLockNotAvailable(t *testing.T) {
	lockErr := &pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"}

	assert.True(t, IsLockNotAvailable(lockErr))
	assert.True(t, IsLockNotAvailable(fmt.Errorf("select room: %w", lockErr)))
	assert.False(t, IsLockNotAvailable(&pq.Error{Code: "40001"}))
	assert.False(t, IsLockNotAvailable(errors.New("boom")))
	assert.False(t, IsLockNotAvailable(nil))
}
