package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewProfileRepository() interfaces.ProfileRepository {
	return &profileRepository{profiles: make(map[string]*models.Profile)}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, utils.ErrNotFound)
	}
	c := *profile
	return &c, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.ID]; ok {
		return fmt.Errorf("profile %s: %w", profile.ID, utils.ErrConflict)
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	c := *profile
	r.profiles[profile.ID] = &c
	return nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, utils.ErrNotFound)
	}

	for key, value := range updates {
		switch key {
		case "full_name":
			profile.FullName = value.(string)
		case "avatar_url":
			profile.AvatarURL = value.(string)
		case "storage_limit":
			profile.StorageLimit = value.(int64)
		default:
			return nil, fmt.Errorf("%w: unknown profile field %q", utils.ErrInvalidInput, key)
		}
	}
	profile.UpdatedAt = time.Now()

	c := *profile
	return &c, nil
}

func (r *profileRepository) SetStorageUsed(ctx context.Context, userID string, used int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %s: %w", userID, utils.ErrNotFound)
	}
	profile.StorageUsed = used
	profile.UpdatedAt = time.Now()
	return nil
}
