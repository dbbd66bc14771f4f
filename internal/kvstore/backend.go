package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Backend is the raw byte store behind a Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryBackend keeps values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.data[key] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
