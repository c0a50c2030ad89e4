package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cftracker/internal/models"
)

// MockCodeforcesClient is a mock implementation of codeforces.ClientInterface
type MockCodeforcesClient struct {
	mock.Mock
}

func (m *MockCodeforcesClient) UserInfo(ctx context.Context, handle string) (*models.UserInfo, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserInfo), args.Error(1)
}

func (m *MockCodeforcesClient) Submissions(ctx context.Context, handle string) ([]models.Submission, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockCodeforcesClient) RatingHistory(ctx context.Context, handle string) ([]models.RatingChange, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingChange), args.Error(1)
}

func (m *MockCodeforcesClient) FetchAll(ctx context.Context, handle string) (*models.ProfileData, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfileData), args.Error(1)
}
