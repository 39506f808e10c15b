package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Folder struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name      string              `json:"name" bson:"name"`
	ParentID  *primitive.ObjectID `json:"parent_id" bson:"parent_id"`
	UserID    string              `json:"user_id" bson:"user_id"`
	Path      string              `json:"path" bson:"path"`
	IsDeleted bool                `json:"is_deleted" bson:"is_deleted"`
	DeletedAt *time.Time          `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

type FolderView struct {
	*Folder
	Type string `json:"type"`
}

// Breadcrumb is one step on the way from the root to a folder.
type Breadcrumb struct {
	ID   *primitive.ObjectID `json:"id"`
	Name string              `json:"name"`
}

type FolderDetail struct {
	FolderView
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}

func (f *Folder) InFolder(parentID *primitive.ObjectID) bool {
	return sameFolder(f.ParentID, parentID)
}

// Listing is the content of one folder: folders first, then files.
type Listing struct {
	FolderID *primitive.ObjectID `json:"folder_id"`
	Folders  []*FolderView       `json:"folders"`
	Files    []*FileView         `json:"files"`
}

// Items flattens the listing into the mixed array the web client renders.
func (l *Listing) Items() []interface{} {
	items := make([]interface{}, 0, len(l.Folders)+len(l.Files))
	for _, folder := range l.Folders {
		items = append(items, folder)
	}
	for _, file := range l.Files {
		items = append(items, file)
	}
	return items
}
