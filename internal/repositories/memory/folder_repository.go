package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type folderRepository struct {
	mu      sync.RWMutex
	folders map[primitive.ObjectID]*models.Folder
}

func NewFolderRepository() interfaces.FolderRepository {
	return &folderRepository{folders: make(map[primitive.ObjectID]*models.Folder)}
}

func copyFolder(f *models.Folder) *models.Folder {
	c := *f
	if f.ParentID != nil {
		id := *f.ParentID
		c.ParentID = &id
	}
	if f.DeletedAt != nil {
		at := *f.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	now := time.Now()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	r.folders[folder.ID] = copyFolder(folder)
	return nil
}

func (r *folderRepository) live(userID string, id primitive.ObjectID) (*models.Folder, error) {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != userID || folder.IsDeleted {
		return nil, fmt.Errorf("folder %s: %w", id.Hex(), utils.ErrFolderNotFound)
	}
	return folder, nil
}

func (r *folderRepository) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folder, err := r.live(userID, id)
	if err != nil {
		return nil, err
	}
	return copyFolder(folder), nil
}

func (r *folderRepository) ListChildren(ctx context.Context, userID string, parentID *primitive.ObjectID) ([]*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folders := make([]*models.Folder, 0)
	for _, folder := range r.folders {
		if folder.UserID == userID && !folder.IsDeleted && folder.InFolder(parentID) {
			folders = append(folders, copyFolder(folder))
		}
	}

	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Name == folders[j].Name {
			return folders[i].ID.Hex() < folders[j].ID.Hex()
		}
		return folders[i].Name < folders[j].Name
	})
	return folders, nil
}

func (r *folderRepository) Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, err := r.live(userID, id)
	if err != nil {
		return nil, err
	}

	updated := *folder
	for key, value := range updates {
		var err error
		switch key {
		case "name":
			updated.Name, err = stringField(key, value)
		case "path":
			updated.Path, err = stringField(key, value)
		case "parent_id":
			updated.ParentID = objectIDPtr(value)
		default:
			err = fmt.Errorf("%w: unknown folder field %q", utils.ErrInvalidInput, key)
		}
		if err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = time.Now()
	*folder = updated

	return copyFolder(folder), nil
}

func (r *folderRepository) SoftDelete(ctx context.Context, userID string, ids []primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, id := range ids {
		folder, ok := r.folders[id]
		if !ok || folder.UserID != userID || folder.IsDeleted {
			continue
		}
		deletedAt := at
		folder.IsDeleted = true
		folder.DeletedAt = &deletedAt
		folder.UpdatedAt = at
		count++
	}
	return count, nil
}

func (r *folderRepository) ListDescendantIDs(ctx context.Context, userID string, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := make(map[primitive.ObjectID][]primitive.ObjectID)
	for _, folder := range r.folders {
		if folder.UserID != userID || folder.IsDeleted || folder.ParentID == nil {
			continue
		}
		children[*folder.ParentID] = append(children[*folder.ParentID], folder.ID)
	}

	var ids []primitive.ObjectID
	queue := []primitive.ObjectID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids, nil
}

func (r *folderRepository) ExistsByName(ctx context.Context, userID string, parentID *primitive.ObjectID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, folder := range r.folders {
		if folder.UserID == userID && !folder.IsDeleted && folder.InFolder(parentID) && folder.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *folderRepository) ReplacePathPrefix(ctx context.Context, userID, oldPrefix, newPrefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := oldPrefix + "/"
	for _, folder := range r.folders {
		if folder.UserID != userID || folder.IsDeleted {
			continue
		}
		if strings.HasPrefix(folder.Path, prefix) {
			folder.Path = newPrefix + "/" + strings.TrimPrefix(folder.Path, prefix)
			folder.UpdatedAt = time.Now()
		}
	}
	return nil
}
