package handlers

import (
	"clouddrive/internal/middleware"
	"clouddrive/internal/services"
	"clouddrive/internal/utils"
	"clouddrive/internal/validators"

	"github.com/gin-gonic/gin"
)

// StorageHandler serves quota usage and the profile row that carries it.
type StorageHandler struct {
	storageService services.StorageService
}

func NewStorageHandler(storageService services.StorageService) *StorageHandler {
	return &StorageHandler{
		storageService: storageService,
	}
}

func (h *StorageHandler) Usage(c *gin.Context) {
	usage, err := h.storageService.Usage(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.HandleServiceError(c, err, "USAGE_FAILED", "Failed to get storage usage")
		return
	}

	utils.SuccessResponse(c, "Storage usage retrieved", gin.H{
		"success": true,
		"used":    usage.Used,
		"total":   usage.Total,
	})
}

func (h *StorageHandler) GetProfile(c *gin.Context) {
	profile, err := h.storageService.EnsureProfile(c.Request.Context(), middleware.UserID(c), "")
	if err != nil {
		utils.HandleServiceError(c, err, "PROFILE_FETCH_FAILED", "Failed to get profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", gin.H{"success": true, "profile": profile})
}

func (h *StorageHandler) UpdateProfile(c *gin.Context) {
	var request validators.UpdateProfileRequest
	if !bindJSON(c, &request) {
		return
	}
	if validationFailed(c, validators.ValidateUpdateProfile(&request)) {
		return
	}

	profile, err := h.storageService.UpdateProfile(c.Request.Context(), middleware.UserID(c), &services.UpdateProfileInput{
		FullName:  request.FullName,
		AvatarURL: request.AvatarURL,
	})
	if err != nil {
		utils.HandleServiceError(c, err, "PROFILE_UPDATE_FAILED", "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, "Profile updated", gin.H{"success": true, "profile": profile})
}
