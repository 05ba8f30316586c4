package mocks

import (
	"context"

	"github.com/you/cyberportal/domain"
)

// MockSessionStorage implements domain.SessionStorage for testing. By
// default it behaves like a real in-memory store; individual calls can
// be overridden through the function fields to inject failures.
type MockSessionStorage struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, keys ...string) error

	Data map[string]string
}

// NewMockSessionStorage creates a mock with an empty backing map.
func NewMockSessionStorage() *MockSessionStorage {
	return &MockSessionStorage{Data: make(map[string]string)}
}

// Get returns the stored value or ErrKeyNotFound.
func (m *MockSessionStorage) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	v, ok := m.Data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

// Set stores the value.
func (m *MockSessionStorage) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.Data[key] = value
	return nil
}

// Delete removes the keys.
func (m *MockSessionStorage) Delete(ctx context.Context, keys ...string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, keys...)
	}
	for _, k := range keys {
		delete(m.Data, k)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionStorage = (*MockSessionStorage)(nil)
