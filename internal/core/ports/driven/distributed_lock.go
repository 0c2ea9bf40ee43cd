package driven

import (
	"context"
	"time"
)

// DistributedLock serializes search index provisioning across instances.
// Implementations: Redis (SET NX with TTL) and PostgreSQL advisory locks.
type DistributedLock interface {
	// Acquire takes the named lock. It returns false without error when
	// another holder has it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release gives up the lock. Releasing a lock that is not held is a no-op.
	Release(ctx context.Context, name string) error

	// Extend pushes the expiry of a lock this instance holds.
	// Backends without expiry only check ownership.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks the lock backend.
	Ping(ctx context.Context) error
}
