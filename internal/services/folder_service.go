package services

import (
	"context"
	"fmt"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxFolderDepth bounds the breadcrumb walk in case of a corrupt cycle.
const maxFolderDepth = 128

type FolderService interface {
	Create(ctx context.Context, userID, name string, parentID *primitive.ObjectID) (*models.FolderView, error)
	Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.FolderDetail, error)
	Rename(ctx context.Context, userID string, id primitive.ObjectID, name string) (*models.FolderView, error)
	// Delete soft-deletes the folder, everything below it and the files inside.
	Delete(ctx context.Context, userID string, id primitive.ObjectID) (*FolderDeleteResult, error)
}

type FolderDeleteResult struct {
	Folders int64 `json:"folders"`
	Files   int64 `json:"files"`
}

type folderService struct {
	folderRepo interfaces.FolderRepository
	fileRepo   interfaces.FileRepository
	quota      StorageService
	listings   *ListingCache
	events     EventPublisher
	logger     *logger.Logger
	now        func() time.Time
}

func NewFolderService(
	folderRepo interfaces.FolderRepository,
	fileRepo interfaces.FileRepository,
	quota StorageService,
	listings *ListingCache,
	events EventPublisher,
	log *logger.Logger,
) FolderService {
	if events == nil {
		events = NoopPublisher()
	}
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		quota:      quota,
		listings:   listings,
		events:     events,
		logger:     log.WithField("service", "folder"),
		now:        time.Now,
	}
}

func (s *folderService) Create(ctx context.Context, userID, name string, parentID *primitive.ObjectID) (*models.FolderView, error) {
	name, err := utils.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	parentPath := ""
	if parentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, userID, *parentID)
		if err != nil {
			return nil, err
		}
		parentPath = parent.Path
	}

	exists, err := s.folderRepo.ExistsByName(ctx, userID, parentID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: folder %q", utils.ErrConflict, name)
	}

	folder := &models.Folder{
		Name:     name,
		ParentID: parentID,
		UserID:   userID,
		Path:     parentPath + "/" + name,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.listings.Invalidate(ctx, userID, parentID)
	view := folderView(folder)
	s.events.Publish(ctx, newEvent(utils.EventFolderCreated, userID, view))
	s.logger.LogUserAction(userID, utils.EventFolderCreated, map[string]interface{}{"folder_id": folder.ID.Hex()})
	return view, nil
}

func (s *folderService) Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.FolderDetail, error) {
	folder, err := s.folderRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	crumbs, err := s.breadcrumbs(ctx, folder)
	if err != nil {
		return nil, err
	}

	return &models.FolderDetail{
		FolderView:  *folderView(folder),
		Breadcrumbs: crumbs,
	}, nil
}

// breadcrumbs lists the path from the root down to folder, both included.
func (s *folderService) breadcrumbs(ctx context.Context, folder *models.Folder) ([]models.Breadcrumb, error) {
	chain := []models.Breadcrumb{{ID: &folder.ID, Name: folder.Name}}

	current := folder
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxFolderDepth {
			return nil, fmt.Errorf("folder %s: hierarchy deeper than %d", folder.ID.Hex(), maxFolderDepth)
		}
		parent, err := s.folderRepo.GetByID(ctx, folder.UserID, *current.ParentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, models.Breadcrumb{ID: &parent.ID, Name: parent.Name})
		current = parent
	}
	chain = append(chain, models.Breadcrumb{ID: nil, Name: utils.RootFolderKey})

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *folderService) Rename(ctx context.Context, userID string, id primitive.ObjectID, name string) (*models.FolderView, error) {
	name, err := utils.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folderView(folder), nil
	}

	exists, err := s.folderRepo.ExistsByName(ctx, userID, folder.ParentID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: folder %q", utils.ErrConflict, name)
	}

	oldPath := folder.Path
	newPath := parentPathOf(oldPath, folder.Name) + "/" + name

	updated, err := s.folderRepo.Update(ctx, userID, id, map[string]interface{}{
		"name": name,
		"path": newPath,
	})
	if err != nil {
		return nil, err
	}
	if err := s.folderRepo.ReplacePathPrefix(ctx, userID, oldPath, newPath); err != nil {
		s.logger.WithUserID(userID).WithError(err).Warn("Failed to rewrite nested folder paths")
	}

	s.listings.Invalidate(ctx, userID, folder.ParentID)
	view := folderView(updated)
	s.events.Publish(ctx, newEvent(utils.EventFolderRenamed, userID, view))
	s.logger.LogUserAction(userID, utils.EventFolderRenamed, map[string]interface{}{"folder_id": id.Hex(), "name": name})
	return view, nil
}

func parentPathOf(path, name string) string {
	suffix := "/" + name
	if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
		return path[:len(path)-len(suffix)]
	}
	return ""
}

func (s *folderService) Delete(ctx context.Context, userID string, id primitive.ObjectID) (*FolderDeleteResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	descendants, err := s.folderRepo.ListDescendantIDs(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	all := append([]primitive.ObjectID{id}, descendants...)

	now := s.now()
	// Files first so a failure never leaves live files in a deleted folder.
	files, err := s.fileRepo.SoftDeleteByFolders(ctx, userID, all, now)
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.SoftDelete(ctx, userID, all, now)
	if err != nil {
		return nil, err
	}

	if files > 0 {
		if _, err := s.quota.Recalculate(ctx, userID); err != nil {
			s.logger.WithUserID(userID).WithError(err).Warn("Failed to update storage usage")
		}
	}

	invalidate := []*primitive.ObjectID{folder.ParentID}
	for i := range all {
		invalidate = append(invalidate, &all[i])
	}
	s.listings.Invalidate(ctx, userID, invalidate...)

	result := &FolderDeleteResult{Folders: folders, Files: files}
	s.events.Publish(ctx, newEvent(utils.EventFolderDeleted, userID, map[string]interface{}{
		"id":      id.Hex(),
		"folders": folders,
		"files":   files,
	}))
	s.logger.LogUserAction(userID, utils.EventFolderDeleted, map[string]interface{}{
		"folder_id": id.Hex(),
		"folders":   folders,
		"files":     files,
	})
	return result, nil
}
