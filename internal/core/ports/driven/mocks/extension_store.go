package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/bonlog/bonlog-core/internal/core/domain"
)

// MockExtensionStore is an in-memory ExtensionStore.
// Extensions listed in Installable can be created; others fail like a
// managed database without the package.
type MockExtensionStore struct {
	mu        sync.Mutex
	installed map[string]bool
	indexes   map[string]bool

	Installable map[string]bool
	ProbeErr    error
	CreateErr   error
	IndexErr    error

	// BeforeIndex runs ahead of index creation, outside the store's mutex
	BeforeIndex func()

	probeCalls int
}

// NewMockExtensionStore creates a new MockExtensionStore
func NewMockExtensionStore() *MockExtensionStore {
	return &MockExtensionStore{
		installed:   make(map[string]bool),
		indexes:     make(map[string]bool),
		Installable: make(map[string]bool),
	}
}

// Install marks an extension as installed (test setup)
func (m *MockExtensionStore) Install(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[name] = true
}

// Uninstall removes an extension (test setup)
func (m *MockExtensionStore) Uninstall(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.installed, name)
}

func (m *MockExtensionStore) ExtensionInstalled(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeCalls++
	if m.ProbeErr != nil {
		return false, m.ProbeErr
	}
	return m.installed[name], nil
}

func (m *MockExtensionStore) CreateExtension(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.installed[name] {
		return nil
	}
	if !m.Installable[name] {
		return fmt.Errorf("extension %q is not available", name)
	}
	m.installed[name] = true
	return nil
}

func (m *MockExtensionStore) CreateSearchIndexes(ctx context.Context, mode domain.SearchMode) error {
	if m.BeforeIndex != nil {
		m.BeforeIndex()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IndexErr != nil {
		return m.IndexErr
	}
	ext := mode.Extension()
	if ext == "" {
		return nil
	}
	if !m.installed[ext] {
		return fmt.Errorf("operator class for %s does not exist", ext)
	}
	for _, target := range []string{"posts_content", "users_nickname", "users_bio"} {
		m.indexes[target+"_"+string(mode)] = true
	}
	return nil
}

// Indexes returns the number of distinct indexes created
func (m *MockExtensionStore) Indexes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.indexes)
}

// ProbeCalls returns how many times ExtensionInstalled ran
func (m *MockExtensionStore) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}
