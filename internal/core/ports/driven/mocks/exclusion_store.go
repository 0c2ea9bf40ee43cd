package mocks

import (
	"context"
	"sync"
)

// MockExclusionStore is an in-memory ExclusionStore
type MockExclusionStore struct {
	mu       sync.RWMutex
	excluded map[string][]string

	Err error
}

// NewMockExclusionStore creates a new MockExclusionStore
func NewMockExclusionStore() *MockExclusionStore {
	return &MockExclusionStore{excluded: make(map[string][]string)}
}

// Exclude hides userIDs from viewerID
func (m *MockExclusionStore) Exclude(viewerID string, userIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excluded[viewerID] = append(m.excluded[viewerID], userIDs...)
}

func (m *MockExclusionStore) ExcludedUserIDs(ctx context.Context, viewerID string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.excluded[viewerID]))
	copy(out, m.excluded[viewerID])
	return out, nil
}
