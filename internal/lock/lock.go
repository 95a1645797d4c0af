// Package lock provides the run-in-progress guard used by the debt
// recalculation scheduler. A cycle must never overlap a previous one, so
// each run first acquires a named lock; when multiple instances share a
// Redis, the lock also keeps them from compounding the same debtors twice.
package lock

import (
	"context"
	"time"
)

// Locker is a best-effort mutual exclusion primitive with expiry. Acquire
// reports false when the lock is currently held elsewhere; the TTL bounds
// how long a crashed holder can block others.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}
