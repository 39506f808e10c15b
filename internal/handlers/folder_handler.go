package handlers

import (
	"clouddrive/internal/middleware"
	"clouddrive/internal/services"
	"clouddrive/internal/utils"
	"clouddrive/internal/validators"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folderService services.FolderService
	audit         *logger.AuditLogger
}

// NewFolderHandler records cascading deletes on audit when it is non-nil.
func NewFolderHandler(folderService services.FolderService, audit *logger.AuditLogger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		audit:         audit,
	}
}

func (h *FolderHandler) Create(c *gin.Context) {
	var request validators.CreateFolderRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateCreateFolder(&request)) {
		return
	}

	folder, err := h.folderService.Create(c.Request.Context(), middleware.UserID(c), request.Name, request.Parent())
	if err != nil {
		utils.HandleServiceError(c, err, "FOLDER_CREATE_FAILED", "Failed to create folder")
		return
	}

	utils.CreatedResponse(c, "Folder created successfully", gin.H{"success": true, "folder": folder})
}

// Get returns the folder with its breadcrumb trail from the root.
func (h *FolderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "folder")
	if !ok {
		return
	}

	detail, err := h.folderService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		utils.HandleServiceError(c, err, "FOLDER_FETCH_FAILED", "Failed to get folder")
		return
	}

	utils.SuccessResponse(c, "Folder retrieved successfully", gin.H{
		"success":     true,
		"folder":      detail.FolderView,
		"breadcrumbs": detail.Breadcrumbs,
	})
}

func (h *FolderHandler) Rename(c *gin.Context) {
	id, ok := pathID(c, "folder")
	if !ok {
		return
	}

	var request validators.RenameRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateRename(&request)) {
		return
	}

	folder, err := h.folderService.Rename(c.Request.Context(), middleware.UserID(c), id, request.Name)
	if err != nil {
		utils.HandleServiceError(c, err, "FOLDER_RENAME_FAILED", "Failed to rename folder")
		return
	}

	utils.SuccessResponse(c, "Folder renamed successfully", gin.H{"success": true, "folder": folder})
}

func (h *FolderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "folder")
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	result, err := h.folderService.Delete(c.Request.Context(), userID, id)
	if err != nil {
		utils.HandleServiceError(c, err, "FOLDER_DELETE_FAILED", "Failed to delete folder")
		return
	}

	if h.audit != nil {
		h.audit.LogAction("folder.delete", id.Hex(), userID, map[string]interface{}{
			"folders": result.Folders,
			"files":   result.Files,
		})
	}

	utils.SuccessResponse(c, "Folder deleted successfully", gin.H{
		"success": true,
		"folders": result.Folders,
		"files":   result.Files,
	})
}
