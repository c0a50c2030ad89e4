package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/cftracker/internal/worker"
)

// MockSubmitter is a mock implementation of session.Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(job worker.Job) error {
	args := m.Called(job)
	return args.Error(0)
}
