package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoFile             = errors.New("no file provided")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnsupportedImage   = errors.New("unsupported image format")
)

// HandleServiceError writes the response matching a service-layer error.
func HandleServiceError(c *gin.Context, err error, fallbackCode, fallbackMessage string) {
	switch {
	case errors.Is(err, ErrFolderNotFound):
		NotFoundResponse(c, "Folder")
	case errors.Is(err, ErrNotFound):
		NotFoundResponse(c, "Resource")
	case errors.Is(err, ErrInvalidName):
		BadRequestResponse(c, ErrMsgNameRequired)
	case errors.Is(err, ErrNoFile):
		BadRequestResponse(c, ErrMsgNoFile)
	case errors.Is(err, ErrInvalidInput):
		BadRequestResponse(c, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		ErrorResponse(c, http.StatusInsufficientStorage, "QUOTA_EXCEEDED", err.Error())
	case errors.Is(err, ErrConflict):
		ConflictResponse(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, fallbackCode, fallbackMessage)
	}
}
