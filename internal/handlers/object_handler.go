package handlers

import (
	"errors"
	"net/http"
	"strings"

	"clouddrive/internal/utils"
	"clouddrive/pkg/storage"

	"github.com/gin-gonic/gin"
)

// ObjectHandler serves signed links for providers without native
// presigning (local disk, memory). The token alone authorizes the read.
type ObjectHandler struct {
	storage storage.StorageProvider
}

func NewObjectHandler(provider storage.StorageProvider) *ObjectHandler {
	return &ObjectHandler{storage: provider}
}

// Enabled reports whether the provider signs its own URLs.
func (h *ObjectHandler) Enabled() bool {
	_, ok := h.storage.(storage.SignedURLVerifier)
	return ok
}

func (h *ObjectHandler) Serve(c *gin.Context) {
	verifier, ok := h.storage.(storage.SignedURLVerifier)
	if !ok {
		utils.NotFoundResponse(c, "Object")
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	if token == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrMsgNoToken)
		return
	}
	if err := verifier.VerifyURLToken(key, token); err != nil {
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "Invalid or expired link")
		return
	}

	content, err := h.storage.Download(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			utils.NotFoundResponse(c, "Object")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}
	defer content.Reader.Close()

	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Reader, map[string]string{
		"Cache-Control": "private, no-store",
	})
}
