package interfaces

import (
	"context"

	"clouddrive/internal/models"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// Create inserts the profile. Creating a profile that already exists
	// returns utils.ErrConflict.
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.Profile, error)
	SetStorageUsed(ctx context.Context, userID string, used int64) error
}
