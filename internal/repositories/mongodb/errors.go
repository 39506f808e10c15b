package mongodb

import (
	"errors"
	"fmt"

	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// notFound translates a driver lookup error into the matching sentinel.
func notFound(err error, sentinel error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, sentinel)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func duplicate(err error, what string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", what, utils.ErrConflict)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

// folderFilter matches rows in a folder; nil selects the root.
func folderFilter(id *primitive.ObjectID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
