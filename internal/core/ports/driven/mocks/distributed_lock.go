package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockDistributedLock keeps TTL locks in memory for provisioning tests.
// AcquireFn and ExtendFn replace the in-memory path for fault injection.
type MockDistributedLock struct {
	mu       sync.Mutex
	expiry   map[string]time.Time
	foreign  map[string]bool
	acquired []string
	extends  int

	AcquireFn func(name string, ttl time.Duration) (bool, error)
	ExtendFn  func(name string, ttl time.Duration) error
	PingErr   error
}

// NewMockDistributedLock creates an empty lock table
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{
		expiry:  make(map[string]time.Time),
		foreign: make(map[string]bool),
	}
}

func (m *MockDistributedLock) live(name string) bool {
	exp, ok := m.expiry[name]
	return ok && time.Now().Before(exp)
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if m.AcquireFn != nil {
		return m.AcquireFn(name, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live(name) {
		return false, nil
	}
	m.expiry[name] = time.Now().Add(ttl)
	delete(m.foreign, name)
	m.acquired = append(m.acquired, name)
	return true, nil
}

// Release drops a lock this instance holds; a lock taken by another holder is kept.
func (m *MockDistributedLock) Release(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.foreign[name] {
		delete(m.expiry, name)
	}
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	if m.ExtendFn != nil {
		return m.ExtendFn(name, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live(name) || m.foreign[name] {
		return fmt.Errorf("lock %s not held", name)
	}
	m.expiry[name] = time.Now().Add(ttl)
	m.extends++
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error {
	return m.PingErr
}

// SetLockHeld simulates another instance holding the lock
func (m *MockDistributedLock) SetLockHeld(name string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry[name] = time.Now().Add(ttl)
	m.foreign[name] = true
}

// IsHeld reports whether anyone holds the lock
func (m *MockDistributedLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live(name)
}

// Acquired returns the lock names taken through the in-memory path, in order
func (m *MockDistributedLock) Acquired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquired...)
}

// Extends returns how many successful extensions ran
func (m *MockDistributedLock) Extends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.extends
}
