package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name          string              `json:"name" bson:"name"`
	OriginalName  string              `json:"original_name" bson:"original_name"`
	Size          int64               `json:"size" bson:"size"`
	MimeType      string              `json:"mime_type" bson:"mime_type"`
	StoragePath   string              `json:"storage_path" bson:"storage_path"`
	ThumbnailPath string              `json:"thumbnail_path,omitempty" bson:"thumbnail_path,omitempty"`
	FolderID      *primitive.ObjectID `json:"folder_id" bson:"folder_id"`
	UserID        string              `json:"user_id" bson:"user_id"`
	IsDeleted     bool                `json:"is_deleted" bson:"is_deleted"`
	DeletedAt     *time.Time          `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

// FileView is a file row as returned to clients.
type FileView struct {
	*File
	Type         string `json:"type"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (f *File) HasThumbnail() bool {
	return f.ThumbnailPath != ""
}

// InFolder reports whether the file lives in folderID; nil means the root.
func (f *File) InFolder(folderID *primitive.ObjectID) bool {
	return sameFolder(f.FolderID, folderID)
}

func sameFolder(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
