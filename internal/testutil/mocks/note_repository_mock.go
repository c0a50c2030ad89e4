package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cftracker/internal/models"
)

// MockNoteRepository is a mock implementation of repository.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) LoadNotes(ctx context.Context) (map[models.ProblemKey]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.ProblemKey]string), args.Error(1)
}

func (m *MockNoteRepository) SaveNote(ctx context.Context, key models.ProblemKey, text string) error {
	args := m.Called(ctx, key, text)
	return args.Error(0)
}
