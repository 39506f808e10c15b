package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fileRepository struct {
	mu    sync.RWMutex
	files map[primitive.ObjectID]*models.File

	// failCreate lets tests simulate a table store outage.
	failCreate error
}

func NewFileRepository() interfaces.FileRepository {
	return &fileRepository{files: make(map[primitive.ObjectID]*models.File)}
}

// FailCreate makes every following Create call return err. Passing nil
// restores normal behavior.
func FailCreate(repo interfaces.FileRepository, err error) {
	if r, ok := repo.(*fileRepository); ok {
		r.mu.Lock()
		r.failCreate = err
		r.mu.Unlock()
	}
}

func copyFile(f *models.File) *models.File {
	c := *f
	if f.FolderID != nil {
		id := *f.FolderID
		c.FolderID = &id
	}
	if f.DeletedAt != nil {
		at := *f.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return fmt.Errorf("failed to create file: %w", r.failCreate)
	}

	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	r.files[file.ID] = copyFile(file)
	return nil
}

func (r *fileRepository) live(userID string, id primitive.ObjectID) (*models.File, error) {
	file, ok := r.files[id]
	if !ok || file.UserID != userID || file.IsDeleted {
		return nil, fmt.Errorf("file %s: %w", id.Hex(), utils.ErrNotFound)
	}
	return file, nil
}

func (r *fileRepository) GetByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.live(userID, id)
	if err != nil {
		return nil, err
	}
	return copyFile(file), nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) ([]*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := make([]*models.File, 0)
	for _, file := range r.files {
		if file.UserID == userID && !file.IsDeleted && file.InFolder(folderID) {
			files = append(files, copyFile(file))
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID.Hex() > files[j].ID.Hex()
		}
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func (r *fileRepository) Update(ctx context.Context, userID string, id primitive.ObjectID, updates map[string]interface{}) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.live(userID, id)
	if err != nil {
		return nil, err
	}

	// Apply to a copy so a rejected field leaves the row untouched.
	updated := *file
	for key, value := range updates {
		var err error
		switch key {
		case "name":
			updated.Name, err = stringField(key, value)
		case "original_name":
			updated.OriginalName, err = stringField(key, value)
		case "folder_id":
			updated.FolderID = objectIDPtr(value)
		case "thumbnail_path":
			updated.ThumbnailPath, err = stringField(key, value)
		case "mime_type":
			updated.MimeType, err = stringField(key, value)
		default:
			err = fmt.Errorf("%w: unknown file field %q", utils.ErrInvalidInput, key)
		}
		if err != nil {
			return nil, err
		}
	}
	updated.UpdatedAt = time.Now()
	*file = updated

	return copyFile(file), nil
}

func (r *fileRepository) SoftDelete(ctx context.Context, userID string, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.live(userID, id)
	if err != nil {
		return err
	}
	markFileDeleted(file, at)
	return nil
}

func markFileDeleted(file *models.File, at time.Time) {
	deletedAt := at
	file.IsDeleted = true
	file.DeletedAt = &deletedAt
	file.UpdatedAt = at
}

func (r *fileRepository) SoftDeleteByFolders(ctx context.Context, userID string, folderIDs []primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets := make(map[primitive.ObjectID]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		targets[id] = struct{}{}
	}

	var count int64
	for _, file := range r.files {
		if file.UserID != userID || file.IsDeleted || file.FolderID == nil {
			continue
		}
		if _, ok := targets[*file.FolderID]; ok {
			markFileDeleted(file, at)
			count++
		}
	}
	return count, nil
}

func (r *fileRepository) SumSizes(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, file := range r.files {
		if file.UserID == userID && !file.IsDeleted {
			total += file.Size
		}
	}
	return total, nil
}

func (r *fileRepository) CountByFolder(ctx context.Context, userID string, folderID *primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, file := range r.files {
		if file.UserID == userID && !file.IsDeleted && file.InFolder(folderID) {
			count++
		}
	}
	return count, nil
}

func stringField(key string, value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string, got %T", utils.ErrInvalidInput, key, value)
	}
	return str, nil
}

func objectIDPtr(value interface{}) *primitive.ObjectID {
	switch v := value.(type) {
	case *primitive.ObjectID:
		if v == nil {
			return nil
		}
		id := *v
		return &id
	case primitive.ObjectID:
		return &v
	default:
		return nil
	}
}
