package services

import (
	"context"
	"errors"
	"fmt"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"
)

// StorageService owns per-user quota accounting and the profile row that
// carries it.
type StorageService interface {
	// EnsureProfile returns the profile of userID, creating it with the
	// default quota on first use.
	EnsureProfile(ctx context.Context, userID, fullName string) (*models.Profile, error)
	Usage(ctx context.Context, userID string) (*models.StorageUsage, error)
	// Recalculate sums the live files of userID and stores the result.
	Recalculate(ctx context.Context, userID string) (int64, error)
	// CheckQuota fails with utils.ErrQuotaExceeded when size more bytes
	// would not fit.
	CheckQuota(ctx context.Context, userID string, size int64) error
	UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*models.Profile, error)
}

type UpdateProfileInput struct {
	FullName  *string
	AvatarURL *string
}

type storageService struct {
	profileRepo  interfaces.ProfileRepository
	fileRepo     interfaces.FileRepository
	defaultLimit int64
	logger       *logger.Logger
}

func NewStorageService(
	profileRepo interfaces.ProfileRepository,
	fileRepo interfaces.FileRepository,
	defaultLimit int64,
	log *logger.Logger,
) StorageService {
	if defaultLimit <= 0 {
		defaultLimit = utils.DefaultStorageLimit
	}
	return &storageService{
		profileRepo:  profileRepo,
		fileRepo:     fileRepo,
		defaultLimit: defaultLimit,
		logger:       log.WithField("service", "storage"),
	}
}

func (s *storageService) EnsureProfile(ctx context.Context, userID, fullName string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	profile = &models.Profile{
		ID:           userID,
		FullName:     fullName,
		StorageUsed:  0,
		StorageLimit: s.defaultLimit,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// Another request created it first.
		if errors.Is(err, utils.ErrConflict) {
			return s.profileRepo.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.WithUserID(userID).Info("Profile created")
	return profile, nil
}

func (s *storageService) Usage(ctx context.Context, userID string) (*models.StorageUsage, error) {
	profile, err := s.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	usage := profile.Usage()
	return &usage, nil
}

func (s *storageService) Recalculate(ctx context.Context, userID string) (int64, error) {
	if _, err := s.EnsureProfile(ctx, userID, ""); err != nil {
		return 0, err
	}

	used, err := s.fileRepo.SumSizes(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.profileRepo.SetStorageUsed(ctx, userID, used); err != nil {
		return 0, err
	}
	return used, nil
}

func (s *storageService) CheckQuota(ctx context.Context, userID string, size int64) error {
	profile, err := s.EnsureProfile(ctx, userID, "")
	if err != nil {
		return err
	}
	if size > profile.Remaining() {
		return fmt.Errorf("%w: %d bytes requested, %d available", utils.ErrQuotaExceeded, size, profile.Remaining())
	}
	return nil
}

func (s *storageService) UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.EnsureProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}
	if len(updates) == 0 {
		return profile, nil
	}

	return s.profileRepo.Update(ctx, userID, updates)
}
