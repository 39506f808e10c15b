package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type folderRepository struct {
	collection *mongo.Collection
}

func NewFolderRepository(db *mongo.Database) interfaces.FolderRepository {
	return &folderRepository{
		collection: db.Collection("folders"),
	}
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt

	if _, err := r.collection.InsertOne(ctx, folder); err != nil {
		return duplicate(err, "folder")
	}
	return nil
}

func (r *folderRepository) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := r.collection.FindOne(ctx, bson.M{
		"_id":        id,
		"user_id":    userID,
		"is_deleted": false,
	}).Decode(&folder)
	if err != nil {
		return nil, notFound(err, utils.ErrFolderNotFound, "folder")
	}
	return &folder, nil
}

func (r *folderRepository) ListChildren(ctx context.Context, userID string, parentID *primitive.ObjectID) ([]*models.Folder, error) {
	filter := bson.M{
		"user_id":    userID,
		"parent_id":  folderFilter(parentID),
		"is_deleted": false,
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer cursor.Close(ctx)

	folders := make([]*models.Folder, 0)
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}
	return folders, nil
}

func (r *folderRepository) Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.Folder, error) {
	updates["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var folder models.Folder
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": userID, "is_deleted": false},
		bson.M{"$set": updates},
		opts,
	).Decode(&folder)
	if err != nil {
		return nil, notFound(err, utils.ErrFolderNotFound, "folder")
	}
	return &folder, nil
}

func (r *folderRepository) SoftDelete(ctx context.Context, userID string, ids []primitive.ObjectID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "deleted_at": at, "updated_at": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folders: %w", err)
	}
	return result.ModifiedCount, nil
}

// ListDescendantIDs walks the tree level by level with one query per depth.
func (r *folderRepository) ListDescendantIDs(ctx context.Context, userID string, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	frontier := []primitive.ObjectID{id}

	for len(frontier) > 0 {
		cursor, err := r.collection.Find(ctx, bson.M{
			"user_id":    userID,
			"parent_id":  bson.M{"$in": frontier},
			"is_deleted": false,
		}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, fmt.Errorf("failed to list sub-folders: %w", err)
		}

		var rows []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		err = cursor.All(ctx, &rows)
		cursor.Close(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to decode sub-folders: %w", err)
		}

		frontier = frontier[:0]
		for _, row := range rows {
			ids = append(ids, row.ID)
			frontier = append(frontier, row.ID)
		}
	}
	return ids, nil
}

func (r *folderRepository) ExistsByName(ctx context.Context, userID string, parentID *primitive.ObjectID, name string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"parent_id":  folderFilter(parentID),
		"name":       name,
		"is_deleted": false,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check folder name: %w", err)
	}
	return count > 0, nil
}

func (r *folderRepository) ReplacePathPrefix(ctx context.Context, userID, oldPrefix, newPrefix string) error {
	filter := bson.M{
		"user_id":    userID,
		"is_deleted": false,
		"path":       primitive.Regex{Pattern: "^" + regexp.QuoteMeta(oldPrefix+"/")},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "path": 1}))
	if err != nil {
		return fmt.Errorf("failed to find nested folders: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Path string             `bson:"path"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return fmt.Errorf("failed to decode nested folders: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(rows))
	for _, row := range rows {
		path := newPrefix + "/" + strings.TrimPrefix(row.Path, oldPrefix+"/")
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": row.ID, "user_id": userID}).
			SetUpdate(bson.M{"$set": bson.M{"path": path, "updated_at": now}}))
	}

	if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to rewrite folder paths: %w", err)
	}
	return nil
}
