package interfaces

import (
	"context"
	"time"

	"clouddrive/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Folder, error)
	// ListChildren returns live sub-folders sorted by name. A nil parentID
	// lists the root.
	ListChildren(ctx context.Context, userID string, parentID *primitive.ObjectID) ([]*models.Folder, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.Folder, error)
	SoftDelete(ctx context.Context, userID string, ids []primitive.ObjectID, at time.Time) (int64, error)
	// ListDescendantIDs returns the ids of all live folders below id, not
	// including id itself.
	ListDescendantIDs(ctx context.Context, userID string, id primitive.ObjectID) ([]primitive.ObjectID, error)
	ExistsByName(ctx context.Context, userID string, parentID *primitive.ObjectID, name string) (bool, error)
	// ReplacePathPrefix rewrites the path of every live descendant whose path
	// starts with oldPrefix + "/".
	ReplacePathPrefix(ctx context.Context, userID, oldPrefix, newPrefix string) error
}
