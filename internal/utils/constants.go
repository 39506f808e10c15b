package utils

import "time"

// Application Constants
const (
	AppName = "CloudDrive"

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// File Upload
	MaxUploadSize       = 50 * 1024 * 1024   // 50MB
	DefaultStorageLimit = 1000 * 1024 * 1024 // 1000MB
	MaxNameLength       = 255
	SignedURLTTL        = 60 * time.Second
	ThumbnailMaxWidth   = 256
	ThumbnailMaxHeight  = 256
	ThumbnailSuffix     = ".thumb.jpg"

	// Listing de-duplication window
	ListingCacheTTL = time.Second
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrMsgNoToken          = "No token provided"
	ErrMsgInvalidToken     = "Invalid token"
	ErrMsgAuthFailed       = "Authentication failed"
	ErrMsgNoFile           = "No file provided"
	ErrMsgNameRequired     = "Name is required"
	ErrMsgInternalServer   = "Internal server error"
	ErrMsgUnauthorized     = "unauthorized"
	ErrMsgFileUploadFailed = "Failed to upload file to storage"
)

// Item types as seen by the client
const (
	ItemTypeFile   = "file"
	ItemTypeFolder = "folder"
)

// Cache Keys
const (
	CacheListingPrefix = "files:"
	CacheProfilePrefix = "profile:"
	RootFolderKey      = "root"
)

// Event Types
const (
	EventFileUploaded  = "file.uploaded"
	EventFileRenamed   = "file.renamed"
	EventFileMoved     = "file.moved"
	EventFileDeleted   = "file.deleted"
	EventFolderCreated = "folder.created"
	EventFolderRenamed = "folder.renamed"
	EventFolderDeleted = "folder.deleted"
)

// Context keys set by middleware
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextRequestID = "request_id"
	ContextProvider  = "auth_provider"
)
