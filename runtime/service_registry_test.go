package runtime

import (
	"errors"
	"testing"

	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

type mockService struct {
	status  error
	stopErr error
	stopped *[]string
}

type secondMockService struct {
	status  error
	stopped *[]string
}

func (_ *mockService) Start() {}

func (m *mockService) Stop() error {
	if m.stopped != nil {
		*m.stopped = append(*m.stopped, "first")
	}
	return m.stopErr
}

func (m *mockService) Status() error {
	return m.status
}

func (_ *secondMockService) Start() {}

func (s *secondMockService) Stop() error {
	if s.stopped != nil {
		*s.stopped = append(*s.stopped, "second")
	}
	return nil
}

func (s *secondMockService) Status() error {
	return s.status
}

func TestRegisterService_Twice(t *testing.T) {
	registry := NewServiceRegistry()

	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))
	assert.Equal(t, 1, len(registry.order))

	// Checks if first service was indeed registered.
	assert.ErrorContains(t, "service already exists", registry.RegisterService(m))
	assert.Equal(t, 1, len(registry.order))
}

func TestFetchService(t *testing.T) {
	registry := NewServiceRegistry()

	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))

	assert.ErrorContains(t, "input must be of pointer type", registry.FetchService(*m))

	var s *secondMockService
	assert.ErrorContains(t, "unknown service", registry.FetchService(&s))

	var m2 *mockService
	require.NoError(t, registry.FetchService(&m2))
	require.Equal(t, m, m2)
}

func TestStopAll_ReverseOrder(t *testing.T) {
	registry := NewServiceRegistry()
	var stopped []string
	require.NoError(t, registry.RegisterService(&mockService{stopped: &stopped, stopErr: errors.New("disk gone")}))
	require.NoError(t, registry.RegisterService(&secondMockService{stopped: &stopped}))

	err := registry.StopAll()
	assert.ErrorContains(t, "disk gone", err)
	assert.DeepEqual(t, []string{"second", "first"}, stopped)
}

func TestServiceStatuses(t *testing.T) {
	registry := NewServiceRegistry()

	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))
	s := &secondMockService{}
	require.NoError(t, registry.RegisterService(s))
	require.NoError(t, registry.Healthy())

	m.status = errors.New("something bad has happened")
	s.status = errors.New("woah, horsee")

	statuses := registry.Statuses()
	assert.ErrorContains(t, "something bad has happened", statuses["*runtime.mockService"])
	assert.ErrorContains(t, "woah, horsee", statuses["*runtime.secondMockService"])
	assert.ErrorContains(t, "*runtime.mockService is unhealthy", registry.Healthy())
}
