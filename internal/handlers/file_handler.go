package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"clouddrive/internal/middleware"
	"clouddrive/internal/services"
	"clouddrive/internal/utils"
	"clouddrive/internal/validators"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService services.FileService
	logger      *logger.Logger
}

func NewFileHandler(fileService services.FileService, log *logger.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      log.WithField("handler", "file"),
	}
}

// Upload stores the multipart "file" part, optionally inside "folderId".
func (h *FileHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.HandleServiceError(c, utils.ErrFileTooLarge, "", "")
			return
		}
		utils.BadRequestResponse(c, utils.ErrMsgNoFile)
		return
	}

	folderID, ok := folderParam(c, c.PostForm("folderId"))
	if !ok {
		return
	}

	src, err := header.Open()
	if err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("Failed to open uploaded part")
		utils.BadRequestResponse(c, utils.ErrMsgNoFile)
		return
	}
	defer src.Close()

	view, err := h.fileService.Upload(c.Request.Context(), middleware.UserID(c), &services.UploadInput{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Reader:   src,
		FolderID: folderID,
	})
	if err != nil {
		utils.HandleServiceError(c, err, "UPLOAD_FAILED", utils.ErrMsgFileUploadFailed)
		return
	}

	utils.CreatedResponse(c, "File uploaded successfully", gin.H{"success": true, "file": view})
}

// List returns the folders and files of "folderId", or of the root.
func (h *FileHandler) List(c *gin.Context) {
	folderID, ok := folderParam(c, c.Query("folderId"))
	if !ok {
		return
	}

	listing, err := h.fileService.List(c.Request.Context(), middleware.UserID(c), folderID)
	if err != nil {
		utils.HandleServiceError(c, err, "LIST_FAILED", "Failed to list files")
		return
	}

	items := listing.Items()
	utils.SuccessResponseWithMeta(c, "Files retrieved successfully", gin.H{
		"success":  true,
		"folderId": listing.FolderID,
		"files":    items,
	}, &utils.Meta{Count: len(items)})
}

func (h *FileHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	view, err := h.fileService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		utils.HandleServiceError(c, err, "FILE_FETCH_FAILED", "Failed to get file")
		return
	}

	utils.SuccessResponse(c, "File retrieved successfully", gin.H{"success": true, "file": view})
}

// Download returns a short lived signed URL for the file.
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	link, err := h.fileService.DownloadURL(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		utils.HandleServiceError(c, err, "DOWNLOAD_FAILED", "Failed to create download link")
		return
	}

	utils.SuccessResponse(c, "Download link created", gin.H{
		"success":    true,
		"url":        link.URL,
		"name":       link.Name,
		"expires_at": link.ExpiresAt,
	})
}

// Content streams the file through the API server.
func (h *FileHandler) Content(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	file, content, err := h.fileService.Open(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		utils.HandleServiceError(c, err, "DOWNLOAD_FAILED", "Failed to read file")
		return
	}
	defer content.Reader.Close()

	contentType := content.ContentType
	if contentType == "" {
		contentType = file.MimeType
	}
	disposition := "attachment"
	if c.Query("inline") == "true" {
		disposition = "inline"
	}

	c.DataFromReader(http.StatusOK, content.Size, contentType, content.Reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("%s; filename=%s", disposition, strconv.Quote(file.Name)),
	})
}

func (h *FileHandler) Thumbnail(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	content, err := h.fileService.Thumbnail(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		utils.HandleServiceError(c, err, "THUMBNAIL_FAILED", "Failed to read thumbnail")
		return
	}
	defer content.Reader.Close()

	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Reader, map[string]string{
		"Cache-Control": "private, max-age=300",
	})
}

// Rename updates the display name; the original upload name is kept.
func (h *FileHandler) Rename(c *gin.Context) {
	id, ok := pathID(c, "file")
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

	view, err := h.fileService.Rename(c.Request.Context(), middleware.UserID(c), id, request.Name)
	if err != nil {
		utils.HandleServiceError(c, err, "RENAME_FAILED", "Failed to rename file")
		return
	}

	utils.SuccessResponse(c, "File renamed successfully", gin.H{"success": true, "file": view})
}

func (h *FileHandler) Move(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	var request validators.MoveRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateMove(&request)) {
		return
	}

	view, err := h.fileService.Move(c.Request.Context(), middleware.UserID(c), id, request.Target())
	if err != nil {
		utils.HandleServiceError(c, err, "MOVE_FAILED", "Failed to move file")
		return
	}

	utils.SuccessResponse(c, "File moved successfully", gin.H{"success": true, "file": view})
}

func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "file")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		utils.HandleServiceError(c, err, "DELETE_FAILED", "Failed to delete file")
		return
	}

	utils.SuccessResponse(c, "File deleted successfully", gin.H{"success": true})
}
