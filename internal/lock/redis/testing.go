package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewLockerForTest creates a Locker with the provided rueidis client (test-only).
func NewLockerForTest(c rueidis.Client, ttl, interval time.Duration) *Locker {
	l := newLocker(c, ttl, nil)
	if interval > 0 {
		l.interval = interval
	}
	return l
}
