package store

import (
	"errors"
	"sync"
)

// ErrClosed is returned by a KV that has been closed.
var ErrClosed = errors.New("store is closed")

// KV is a durable mapping from string keys to opaque values.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) ([]byte, bool, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	Close() error
}

// MemoryKV is a process-local KV, used when nothing needs to survive a restart and in tests.
type MemoryKV struct {
	values map[string][]byte
	closed bool
	mutex  sync.RWMutex
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[string][]byte),
	}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.closed {
		return nil, false, ErrClosed
	}

	value, exists := m.values[key]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.closed = true
	return nil
}
