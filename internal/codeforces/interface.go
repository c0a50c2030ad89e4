package codeforces

import (
	"context"

	"github.com/vytor/cftracker/internal/models"
)

// ClientInterface defines the Codeforces API operations the dashboard uses.
type ClientInterface interface {
	UserInfo(ctx context.Context, handle string) (*models.UserInfo, error)
	Submissions(ctx context.Context, handle string) ([]models.Submission, error)
	RatingHistory(ctx context.Context, handle string) ([]models.RatingChange, error)
	FetchAll(ctx context.Context, handle string) (*models.ProfileData, error)
}

var _ ClientInterface = (*Client)(nil)
