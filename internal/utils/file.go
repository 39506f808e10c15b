package utils

import (
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// SanitizeFileName strips any directory components a client smuggled into
// the upload name. Backslashes are treated as separators too.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// NormalizeName trims a user supplied display name and rejects empty or
// overlong values.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrInvalidInput, MaxNameLength)
	}
	if strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: name must not contain path separators", ErrInvalidInput)
	}
	return name, nil
}

// BuildStorageKey returns "<userID>/<unixMillis>-<name>".
func BuildStorageKey(userID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", userID, now.UnixMilli(), filename)
}

func ThumbnailKey(storageKey string) string {
	return storageKey + ThumbnailSuffix
}

func GetContentType(filename string) string {
	ext := GetFileExtension(filename)

	contentTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".mp3":  "audio/mpeg",
		".wav":  "audio/wav",
		".mp4":  "video/mp4",
		".mov":  "video/quicktime",
		".zip":  "application/zip",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	return "application/octet-stream"
}

// ResolveContentType prefers the type the client declared unless it is
// missing or the generic octet-stream.
func ResolveContentType(declared, filename string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return mediaType
		}
	}
	return GetContentType(filename)
}
