// Package storage persists the task list as a single JSON value in a local
// key-value store.
package storage

import (
	"sync"

	"github.com/dori/ticklist/internal/db"
)

// KV is the local durable key-value store the task list is written to.
// Consumers depend on this interface rather than on *db.DB so tests can
// run against MemoryKV.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Verify *db.DB satisfies KV at compile time.
var _ KV = (*db.DB)(nil)

// MemoryKV is an in-process KV. GetErr and SetErr, when non-nil, are
// returned by every Get/Set call so storage failures can be simulated.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string

	GetErr error
	SetErr error
}

// NewMemoryKV returns an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}
