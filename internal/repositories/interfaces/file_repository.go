package interfaces

import (
	"context"
	"time"

	"clouddrive/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRepository stores file rows. Every method is scoped to one owner and
// ignores soft-deleted rows unless stated otherwise.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.File, error)
	// ListByFolder returns the live files of a folder, newest first. A nil
	// folderID lists the root.
	ListByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) ([]*models.File, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.File, error)
	SoftDelete(ctx context.Context, userID string, id primitive.ObjectID, at time.Time) error
	// SoftDeleteByFolders soft-deletes every live file inside the given folders
	// and returns how many rows changed.
	SoftDeleteByFolders(ctx context.Context, userID string, folderIDs []primitive.ObjectID, at time.Time) (int64, error)
	SumSizes(ctx context.Context, userID string) (int64, error)
	CountByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) (int64, error)
}
