package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"clouddrive/internal/utils"
	"clouddrive/pkg/storage"
)

const thumbnailQuality = 80

type ThumbnailService interface {
	// Generate stores a jpeg preview of the image next to storageKey and
	// returns the preview key.
	Generate(ctx context.Context, storageKey, mimeType string, source io.Reader) (string, error)
}

type thumbnailService struct {
	storage storage.StorageProvider
}

func NewThumbnailService(storage storage.StorageProvider) ThumbnailService {
	return &thumbnailService{storage: storage}
}

func (s *thumbnailService) Generate(ctx context.Context, storageKey, mimeType string, source io.Reader) (string, error) {
	if !utils.IsThumbnailable(mimeType) {
		return "", utils.ErrUnsupportedImage
	}

	img, err := utils.GenerateThumbnail(source, mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := utils.EncodeImage(img, "jpeg", &buf, thumbnailQuality); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	key := utils.ThumbnailKey(storageKey)
	_, err = s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       &buf,
		ContentType:  "image/jpeg",
		Size:         int64(buf.Len()),
		CacheControl: "private, max-age=86400",
		Overwrite:    true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return key, nil
}
