package storage

import (
	"context"
	"sync"

	"github.com/you/cyberportal/domain"
)

// MemoryProvider is an in-process domain.StorageProvider. It backs the
// "memory" driver for local development and is the storage used by
// most tests. State does not survive a restart.
type MemoryProvider struct {
	mu       sync.Mutex
	visitors map[string]map[string]string
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{visitors: make(map[string]map[string]string)}
}

// Visitor implements domain.StorageProvider
func (p *MemoryProvider) Visitor(id string) domain.SessionStorage {
	return &memoryStorage{provider: p, visitor: id}
}

type memoryStorage struct {
	provider *MemoryProvider
	visitor  string
}

func (s *memoryStorage) Get(_ context.Context, key string) (string, error) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	v, ok := s.provider.visitors[s.visitor][key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *memoryStorage) Set(_ context.Context, key, value string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	if s.provider.visitors[s.visitor] == nil {
		s.provider.visitors[s.visitor] = make(map[string]string)
	}
	s.provider.visitors[s.visitor][key] = value
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, keys ...string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	for _, k := range keys {
		delete(s.provider.visitors[s.visitor], k)
	}
	return nil
}

var _ domain.StorageProvider = (*MemoryProvider)(nil)
