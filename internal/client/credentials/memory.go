package credentials

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) SetPair(ctx context.Context, p Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[AccessTokenKey] = p.AccessToken
	m.values[RefreshTokenKey] = p.RefreshToken
	return nil
}
