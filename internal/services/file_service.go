package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"
	"clouddrive/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileService interface {
	Upload(ctx context.Context, userID string, input *UploadInput) (*models.FileView, error)
	// List returns the folders and then the files of folderID; nil is the root.
	List(ctx context.Context, userID string, folderID *primitive.ObjectID) (*models.Listing, error)
	Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.FileView, error)
	Rename(ctx context.Context, userID string, id primitive.ObjectID, name string) (*models.FileView, error)
	Move(ctx context.Context, userID string, id primitive.ObjectID, folderID *primitive.ObjectID) (*models.FileView, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
	DownloadURL(ctx context.Context, userID string, id primitive.ObjectID) (*DownloadLink, error)
	// Open streams the stored object. The caller closes the reader.
	Open(ctx context.Context, userID string, id primitive.ObjectID) (*models.File, *storage.DownloadResponse, error)
	Thumbnail(ctx context.Context, userID string, id primitive.ObjectID) (*storage.DownloadResponse, error)
}

type UploadInput struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
	FolderID *primitive.ObjectID
}

type DownloadLink struct {
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FileServiceConfig struct {
	MaxFileSize        int64
	SignedURLTTL       time.Duration
	Thumbnails         bool
	ThumbnailMaxSource int64
}

type fileService struct {
	fileRepo   interfaces.FileRepository
	folderRepo interfaces.FolderRepository
	storage    storage.StorageProvider
	quota      StorageService
	thumbnails ThumbnailService
	listings   *ListingCache
	events     EventPublisher
	config     FileServiceConfig
	logger     *logger.Logger
	now        func() time.Time
}

func NewFileService(
	fileRepo interfaces.FileRepository,
	folderRepo interfaces.FolderRepository,
	storage storage.StorageProvider,
	quota StorageService,
	thumbnails ThumbnailService,
	listings *ListingCache,
	events EventPublisher,
	config FileServiceConfig,
	log *logger.Logger,
) FileService {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = utils.MaxUploadSize
	}
	if config.SignedURLTTL <= 0 {
		config.SignedURLTTL = utils.SignedURLTTL
	}
	if events == nil {
		events = NoopPublisher()
	}
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		storage:    storage,
		quota:      quota,
		thumbnails: thumbnails,
		listings:   listings,
		events:     events,
		config:     config,
		logger:     log.WithField("service", "file"),
		now:        time.Now,
	}
}

func (s *fileService) Upload(ctx context.Context, userID string, input *UploadInput) (*models.FileView, error) {
	if input == nil || input.Reader == nil || input.Size <= 0 {
		return nil, utils.ErrNoFile
	}
	if input.Size > s.config.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", utils.ErrFileTooLarge, input.Size, s.config.MaxFileSize)
	}

	name := utils.SanitizeFileName(input.Name)
	if name == "" {
		return nil, utils.ErrInvalidName
	}
	mimeType := utils.ResolveContentType(input.MimeType, name)

	if input.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, userID, *input.FolderID); err != nil {
			return nil, err
		}
	}

	if err := s.quota.CheckQuota(ctx, userID, input.Size); err != nil {
		return nil, err
	}

	// Keep a copy of small images for the preview while streaming to storage.
	reader := input.Reader
	var preview *bytes.Buffer
	if s.wantsThumbnail(mimeType, input.Size) {
		preview = &bytes.Buffer{}
		reader = io.TeeReader(reader, preview)
	}

	now := s.now()
	key := utils.BuildStorageKey(userID, name, now)
	log := s.logger.WithUserID(userID).WithField("storage_path", key)

	_, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      reader,
		ContentType: mimeType,
		Size:        input.Size,
		Metadata:    map[string]string{"user_id": userID, "original_name": name},
		Overwrite:   false,
	})
	if err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return nil, fmt.Errorf("%w: %s", utils.ErrConflict, name)
		}
		log.WithError(err).Error("Failed to upload file to storage")
		return nil, fmt.Errorf("failed to upload file to storage: %w", err)
	}

	file := &models.File{
		Name:         name,
		OriginalName: name,
		Size:         input.Size,
		MimeType:     mimeType,
		StoragePath:  key,
		FolderID:     input.FolderID,
		UserID:       userID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		log.WithError(err).Error("Failed to save file metadata, removing stored object")
		if cleanupErr := s.storage.Delete(context.WithoutCancel(ctx), key); cleanupErr != nil {
			log.WithError(cleanupErr).Error("Failed to remove orphaned object")
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	if preview != nil {
		s.attachThumbnail(ctx, file, preview)
	}

	if _, err := s.quota.Recalculate(ctx, userID); err != nil {
		log.WithError(err).Warn("Failed to update storage usage")
	}
	s.listings.Invalidate(ctx, userID, file.FolderID)

	view := s.view(file)
	s.events.Publish(ctx, newEvent(utils.EventFileUploaded, userID, view))
	s.logger.LogFileEvent(userID, file.ID.Hex(), utils.EventFileUploaded, map[string]interface{}{
		"size":      file.Size,
		"mime_type": file.MimeType,
	})

	return view, nil
}

func (s *fileService) wantsThumbnail(mimeType string, size int64) bool {
	if !s.config.Thumbnails || s.thumbnails == nil || !utils.IsThumbnailable(mimeType) {
		return false
	}
	return s.config.ThumbnailMaxSource <= 0 || size <= s.config.ThumbnailMaxSource
}

// attachThumbnail is best effort: an image that fails to decode still
// uploads fine, it just has no preview.
func (s *fileService) attachThumbnail(ctx context.Context, file *models.File, source *bytes.Buffer) {
	log := s.logger.WithUserID(file.UserID).WithField("file_id", file.ID.Hex())

	key, err := s.thumbnails.Generate(ctx, file.StoragePath, file.MimeType, source)
	if err != nil {
		log.WithError(err).Warn("Thumbnail generation failed")
		return
	}

	if _, err := s.fileRepo.Update(ctx, file.UserID, file.ID, map[string]interface{}{"thumbnail_path": key}); err != nil {
		log.WithError(err).Warn("Failed to record thumbnail")
		return
	}
	file.ThumbnailPath = key
}

func (s *fileService) List(ctx context.Context, userID string, folderID *primitive.ObjectID) (*models.Listing, error) {
	return s.listings.Get(ctx, userID, folderID, func(ctx context.Context) (*models.Listing, error) {
		if folderID != nil {
			if _, err := s.folderRepo.GetByID(ctx, userID, *folderID); err != nil {
				return nil, err
			}
		}

		folders, err := s.folderRepo.ListChildren(ctx, userID, folderID)
		if err != nil {
			return nil, err
		}
		files, err := s.fileRepo.ListByFolder(ctx, userID, folderID)
		if err != nil {
			return nil, err
		}

		listing := &models.Listing{
			FolderID: folderID,
			Folders:  make([]*models.FolderView, 0, len(folders)),
			Files:    make([]*models.FileView, 0, len(files)),
		}
		for _, folder := range folders {
			listing.Folders = append(listing.Folders, folderView(folder))
		}
		for _, file := range files {
			listing.Files = append(listing.Files, s.view(file))
		}
		return listing, nil
	})
}

func (s *fileService) Get(ctx context.Context, userID string, id primitive.ObjectID) (*models.FileView, error) {
	file, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(file), nil
}

func (s *fileService) Rename(ctx context.Context, userID string, id primitive.ObjectID, name string) (*models.FileView, error) {
	name, err := utils.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.Update(ctx, userID, id, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}

	s.listings.Invalidate(ctx, userID, file.FolderID)
	view := s.view(file)
	s.events.Publish(ctx, newEvent(utils.EventFileRenamed, userID, view))
	s.logger.LogFileEvent(userID, id.Hex(), utils.EventFileRenamed, map[string]interface{}{"name": name})
	return view, nil
}

func (s *fileService) Move(ctx context.Context, userID string, id primitive.ObjectID, folderID *primitive.ObjectID) (*models.FileView, error) {
	current, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, userID, *folderID); err != nil {
			return nil, err
		}
	}
	if current.InFolder(folderID) {
		return s.view(current), nil
	}

	file, err := s.fileRepo.Update(ctx, userID, id, map[string]interface{}{"folder_id": folderID})
	if err != nil {
		return nil, err
	}

	s.listings.Invalidate(ctx, userID, current.FolderID, folderID)
	view := s.view(file)
	s.events.Publish(ctx, newEvent(utils.EventFileMoved, userID, view))
	s.logger.LogFileEvent(userID, id.Hex(), utils.EventFileMoved, map[string]interface{}{"folder_id": folderID})
	return view, nil
}

func (s *fileService) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	file, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.fileRepo.SoftDelete(ctx, userID, id, s.now()); err != nil {
		return err
	}

	if _, err := s.quota.Recalculate(ctx, userID); err != nil {
		s.logger.WithUserID(userID).WithError(err).Warn("Failed to update storage usage")
	}
	s.listings.Invalidate(ctx, userID, file.FolderID)
	s.events.Publish(ctx, newEvent(utils.EventFileDeleted, userID, map[string]interface{}{"id": id.Hex()}))
	s.logger.LogFileEvent(userID, id.Hex(), utils.EventFileDeleted, nil)
	return nil
}

func (s *fileService) DownloadURL(ctx context.Context, userID string, id primitive.ObjectID) (*DownloadLink, error) {
	file, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.config.SignedURLTTL)
	url, err := s.storage.GetURL(ctx, file.StoragePath, s.config.SignedURLTTL)
	if err != nil {
		return nil, s.storageError(err)
	}

	return &DownloadLink{URL: url, Name: file.Name, ExpiresAt: expiresAt}, nil
}

func (s *fileService) Open(ctx context.Context, userID string, id primitive.ObjectID) (*models.File, *storage.DownloadResponse, error) {
	file, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, s.storageError(err)
	}
	return file, content, nil
}

func (s *fileService) Thumbnail(ctx context.Context, userID string, id primitive.ObjectID) (*storage.DownloadResponse, error) {
	file, err := s.fileRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !file.HasThumbnail() {
		return nil, fmt.Errorf("thumbnail of %s: %w", id.Hex(), utils.ErrNotFound)
	}

	content, err := s.storage.Download(ctx, file.ThumbnailPath)
	if err != nil {
		return nil, s.storageError(err)
	}
	return content, nil
}

func (s *fileService) storageError(err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %v", utils.ErrNotFound, err)
	}
	return err
}

func (s *fileService) view(file *models.File) *models.FileView {
	view := &models.FileView{
		File: file,
		Type: utils.ItemTypeFile,
		URL:  s.storage.PublicURL(file.StoragePath),
	}
	if file.HasThumbnail() {
		view.ThumbnailURL = "/api/files/" + file.ID.Hex() + "/thumbnail"
	}
	return view
}

func folderView(folder *models.Folder) *models.FolderView {
	return &models.FolderView{Folder: folder, Type: utils.ItemTypeFolder}
}
