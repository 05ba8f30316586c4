package mocks

import "github.com/you/cyberportal/domain"

// MockNavigator implements domain.Navigator for testing, recording
// every navigation target. NavigateFunc can be set to make navigation
// misbehave (e.g. panic) in failure-path tests.
type MockNavigator struct {
	NavigateFunc func(path string)
	Visited      []string
}

// NewMockNavigator creates a new MockNavigator.
func NewMockNavigator() *MockNavigator {
	return &MockNavigator{}
}

// Navigate records the target route.
func (m *MockNavigator) Navigate(path string) {
	if m.NavigateFunc != nil {
		m.NavigateFunc(path)
		return
	}
	m.Visited = append(m.Visited, path)
}

// Last returns the most recent navigation target, or "".
func (m *MockNavigator) Last() string {
	if len(m.Visited) == 0 {
		return ""
	}
	return m.Visited[len(m.Visited)-1]
}

// Compile-time interface compliance verification
var _ domain.Navigator = (*MockNavigator)(nil)
