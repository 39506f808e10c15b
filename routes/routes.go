package routes

import (
	"clouddrive/internal/handlers"
	"clouddrive/internal/identity"
	"clouddrive/internal/middleware"
	"clouddrive/pkg/logger"
	"clouddrive/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router serves. WebSocket may be nil.
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Files     *handlers.FileHandler
	Folders   *handlers.FolderHandler
	Storage   *handlers.StorageHandler
	Objects   *handlers.ObjectHandler
	WebSocket *websocket.Handler
}

type Options struct {
	CORSOrigins   []string
	MaxUploadSize int64
	// UploadsPath is where signed object links are served, e.g. "/uploads".
	UploadsPath string
}

// NewRouter builds the engine with the standard middleware chain.
func NewRouter(h *Handlers, verifier identity.Verifier, opts Options, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(opts.CORSOrigins),
	)

	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)

	if h.Objects != nil && h.Objects.Enabled() {
		path := opts.UploadsPath
		if path == "" {
			path = "/uploads"
		}
		r.GET(path+"/*key", h.Objects.Serve)
	}

	api := r.Group("/api")
	auth := middleware.AuthRequired(verifier, log)

	SetupAuthRoutes(api, h.Auth, auth)
	SetupFileRoutes(api, h.Files, auth, opts.MaxUploadSize)
	SetupFolderRoutes(api, h.Folders, auth)
	SetupStorageRoutes(api, h.Storage, auth)

	if h.WebSocket != nil {
		api.GET("/ws", auth, h.WebSocket.HandleWebSocket)
	}

	return r
}

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth gin.HandlerFunc) {
	routes := r.Group("/auth")
	{
		if authHandler.LocalAccounts() {
			routes.POST("/register", authHandler.Register)
			routes.POST("/login", authHandler.Login)
			routes.POST("/refresh", authHandler.Refresh)
		}
		routes.GET("/me", auth, authHandler.Me)
	}
}

func SetupFileRoutes(r *gin.RouterGroup, fileHandler *handlers.FileHandler, auth gin.HandlerFunc, maxUploadSize int64) {
	files := r.Group("/files")
	files.Use(auth)
	{
		// Leave room for the multipart envelope around the file itself.
		files.POST("/upload", middleware.MaxBodySize(maxUploadSize+1<<20), fileHandler.Upload)
		files.GET("", fileHandler.List)
		files.GET("/:id", fileHandler.Get)
		files.GET("/:id/download", fileHandler.Download)
		files.GET("/:id/content", fileHandler.Content)
		files.GET("/:id/thumbnail", fileHandler.Thumbnail)
		files.PUT("/:id", fileHandler.Rename)
		files.PATCH("/:id/move", fileHandler.Move)
		files.DELETE("/:id", fileHandler.Delete)
	}
}

func SetupFolderRoutes(r *gin.RouterGroup, folderHandler *handlers.FolderHandler, auth gin.HandlerFunc) {
	folders := r.Group("/folders")
	folders.Use(auth)
	{
		folders.POST("", folderHandler.Create)
		folders.GET("/:id", folderHandler.Get)
		folders.PUT("/:id", folderHandler.Rename)
		folders.DELETE("/:id", folderHandler.Delete)
	}
}

func SetupStorageRoutes(r *gin.RouterGroup, storageHandler *handlers.StorageHandler, auth gin.HandlerFunc) {
	r.GET("/storage", auth, storageHandler.Usage)
	r.GET("/profile", auth, storageHandler.GetProfile)
	r.PUT("/profile", auth, storageHandler.UpdateProfile)
}
