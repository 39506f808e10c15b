package validators

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RenameRequest struct {
	Name string `json:"name" validate:"not_blank,item_name"`
}

// MoveRequest targets the root when FolderID is empty or null.
type MoveRequest struct {
	FolderID *string `json:"folderId" validate:"omitempty,object_id"`
}

type CreateFolderRequest struct {
	Name     string  `json:"name" validate:"not_blank,item_name"`
	ParentID *string `json:"parentId" validate:"omitempty,object_id"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func ValidateRename(req *RenameRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	return ValidateStruct(req)
}

func ValidateMove(req *MoveRequest) ValidationErrors {
	return ValidateStruct(req)
}

// Target resolves the destination folder; nil is the root.
func (r *MoveRequest) Target() *primitive.ObjectID {
	if r.FolderID == nil {
		return nil
	}
	id, _ := ParseObjectID(*r.FolderID)
	return id
}

func ValidateCreateFolder(req *CreateFolderRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	return ValidateStruct(req)
}

func (r *CreateFolderRequest) Parent() *primitive.ObjectID {
	if r.ParentID == nil {
		return nil
	}
	id, _ := ParseObjectID(*r.ParentID)
	return id
}

func ValidateUpdateProfile(req *UpdateProfileRequest) ValidationErrors {
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		req.FullName = &trimmed
	}
	return ValidateStruct(req)
}
