// Package mocks holds testify mocks of the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jostojic/quotescreen/internal/ports"
)

// MockFrameSink is a mock implementation of ports.FrameSink.
type MockFrameSink struct {
	mock.Mock
}

var _ ports.FrameSink = (*MockFrameSink)(nil)

// NewMockFrameSink creates a MockFrameSink that asserts its expectations on cleanup.
func NewMockFrameSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFrameSink {
	m := &MockFrameSink{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Name provides a mock function.
func (m *MockFrameSink) Name() string {
	ret := m.Called()

	return ret.String(0)
}

// BeginFrame provides a mock function.
func (m *MockFrameSink) BeginFrame(fullWindow bool) {
	m.Called(fullWindow)
}

// Clear provides a mock function.
func (m *MockFrameSink) Clear() {
	m.Called()
}

// DrawRun provides a mock function.
func (m *MockFrameSink) DrawRun(x, y int, text string, font ports.FontID) {
	m.Called(x, y, text, font)
}

// Commit provides a mock function.
func (m *MockFrameSink) Commit(ctx context.Context) error {
	ret := m.Called(ctx)

	return ret.Error(0)
}
