package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/jostojic/quotescreen/internal/ports"
)

// MockMedium is a mock implementation of ports.Medium.
type MockMedium struct {
	mock.Mock
}

var _ ports.Medium = (*MockMedium)(nil)

// NewMockMedium creates a MockMedium that asserts its expectations on cleanup.
func NewMockMedium(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMedium {
	m := &MockMedium{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// ReadAt provides a mock function.
func (m *MockMedium) ReadAt(p []byte, off int64) (int, error) {
	ret := m.Called(p, off)

	return ret.Int(0), ret.Error(1)
}

// WriteAt provides a mock function.
func (m *MockMedium) WriteAt(p []byte, off int64) (int, error) {
	ret := m.Called(p, off)

	return ret.Int(0), ret.Error(1)
}

// Sync provides a mock function.
func (m *MockMedium) Sync() error {
	ret := m.Called()

	return ret.Error(0)
}

// Size provides a mock function.
func (m *MockMedium) Size() int64 {
	ret := m.Called()

	return ret.Get(0).(int64)
}

// Close provides a mock function.
func (m *MockMedium) Close() error {
	ret := m.Called()

	return ret.Error(0)
}
