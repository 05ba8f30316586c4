package mocks

import (
	"context"

	"github.com/you/cyberportal/domain"
)

// MockNotifier implements domain.Notifier for testing, recording every
// queued notice in order.
type MockNotifier struct {
	Notices []domain.Flash
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Success records a success notice.
func (m *MockNotifier) Success(_ context.Context, message string) {
	m.Notices = append(m.Notices, domain.Flash{Level: domain.FlashSuccess, Message: message})
}

// Error records an error notice.
func (m *MockNotifier) Error(_ context.Context, message string) {
	m.Notices = append(m.Notices, domain.Flash{Level: domain.FlashError, Message: message})
}

// Info records an info notice.
func (m *MockNotifier) Info(_ context.Context, message string) {
	m.Notices = append(m.Notices, domain.Flash{Level: domain.FlashInfo, Message: message})
}

// Drain returns the recorded notices and clears them.
func (m *MockNotifier) Drain(_ context.Context) []domain.Flash {
	out := m.Notices
	m.Notices = nil
	return out
}

// Last returns the most recent notice, or a zero Flash when empty.
func (m *MockNotifier) Last() domain.Flash {
	if len(m.Notices) == 0 {
		return domain.Flash{}
	}
	return m.Notices[len(m.Notices)-1]
}

// Compile-time interface compliance verification
var _ domain.Notifier = (*MockNotifier)(nil)
