package mongodb

import (
	"context"
	"fmt"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fileRepository struct {
	collection *mongo.Collection
}

func NewFileRepository(db *mongo.Database) interfaces.FileRepository {
	return &fileRepository{
		collection: db.Collection("files"),
	}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt

	if _, err := r.collection.InsertOne(ctx, file); err != nil {
		return duplicate(err, "file")
	}
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := r.collection.FindOne(ctx, bson.M{
		"_id":        id,
		"user_id":    userID,
		"is_deleted": false,
	}).Decode(&file)
	if err != nil {
		return nil, notFound(err, utils.ErrNotFound, "file")
	}
	return &file, nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) ([]*models.File, error) {
	filter := bson.M{
		"user_id":    userID,
		"folder_id":  folderFilter(folderID),
		"is_deleted": false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]*models.File, 0)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	return files, nil
}

func (r *fileRepository) Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.File, error) {
	updates["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var file models.File
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": userID, "is_deleted": false},
		bson.M{"$set": updates},
		opts,
	).Decode(&file)
	if err != nil {
		return nil, notFound(err, utils.ErrNotFound, "file")
	}
	return &file, nil
}

func (r *fileRepository) SoftDelete(ctx context.Context, userID string, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": userID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": at, "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("file %s: %w", id.Hex(), utils.ErrNotFound)
	}
	return nil
}

func (r *fileRepository) SoftDeleteByFolders(ctx context.Context, userID string, folderIDs []primitive.ObjectID, at time.Time) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "folder_id": bson.M{"$in": folderIDs}, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": at, "updated_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder files: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *fileRepository) SumSizes(ctx context.Context, userID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "is_deleted": false}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$size"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum file sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode file sizes: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *fileRepository) CountByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"folder_id":  folderFilter(folderID),
		"is_deleted": false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}
