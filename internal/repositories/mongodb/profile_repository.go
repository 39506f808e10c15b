package mongodb

import (
	"context"
	"fmt"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
	"clouddrive/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCacheTTL = 5 * time.Minute

type profileRepository struct {
	collection *mongo.Collection
	cache      cache.Cache
}

func NewProfileRepository(db *mongo.Database, cache cache.Cache) interfaces.ProfileRepository {
	return &profileRepository{
		collection: db.Collection("profiles"),
		cache:      cache,
	}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if profile := r.getProfileFromCache(ctx, userID); profile != nil {
		return profile, nil
	}

	var profile models.Profile
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile); err != nil {
		return nil, notFound(err, utils.ErrNotFound, "profile")
	}

	r.cacheProfile(ctx, &profile)
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		return duplicate(err, "profile")
	}

	r.cacheProfile(ctx, profile)
	return nil
}

func (r *profileRepository) Update(ctx context.Context, userID string, updates map[string]interface{}) (*models.Profile, error) {
	updates["updated_at"] = time.Now()

	var profile models.Profile
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": updates},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&profile)
	if err != nil {
		return nil, notFound(err, utils.ErrNotFound, "profile")
	}

	r.invalidateProfileCache(ctx, userID)
	return &profile, nil
}

func (r *profileRepository) SetStorageUsed(ctx context.Context, userID string, used int64) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"storage_used": used, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update storage usage: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s: %w", userID, utils.ErrNotFound)
	}

	r.invalidateProfileCache(ctx, userID)
	return nil
}

func (r *profileRepository) cacheProfile(ctx context.Context, profile *models.Profile) {
	if r.cache != nil {
		r.cache.Set(ctx, utils.CacheProfilePrefix+profile.ID, profile, profileCacheTTL)
	}
}

func (r *profileRepository) getProfileFromCache(ctx context.Context, userID string) *models.Profile {
	if r.cache == nil {
		return nil
	}

	var profile models.Profile
	if err := r.cache.Get(ctx, utils.CacheProfilePrefix+userID, &profile); err != nil {
		return nil
	}
	return &profile
}

func (r *profileRepository) invalidateProfileCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, utils.CacheProfilePrefix+userID)
	}
}
