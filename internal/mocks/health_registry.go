package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jostojic/quotescreen/internal/ports"
)

// MockHealthRegistry is a mock implementation of ports.HealthRegistry.
type MockHealthRegistry struct {
	mock.Mock
}

var _ ports.HealthRegistry = (*MockHealthRegistry)(nil)

// NewMockHealthRegistry creates a MockHealthRegistry that asserts its expectations on cleanup.
func NewMockHealthRegistry(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockHealthRegistry {
	m := &MockHealthRegistry{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Register provides a mock function.
func (m *MockHealthRegistry) Register(checker ports.HealthChecker) error {
	ret := m.Called(checker)

	return ret.Error(0)
}

// CheckAll provides a mock function.
func (m *MockHealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	ret := m.Called(ctx)

	res, _ := ret.Get(0).(*ports.HealthResult)

	return res
}
