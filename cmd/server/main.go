package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clouddrive/internal/config"
	"clouddrive/internal/handlers"
	"clouddrive/internal/identity"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/repositories/memory"
	"clouddrive/internal/repositories/mongodb"
	"clouddrive/internal/services"
	"clouddrive/pkg/cache"
	"clouddrive/pkg/database"
	"clouddrive/pkg/logger"
	"clouddrive/pkg/storage"
	"clouddrive/pkg/websocket"
	"clouddrive/routes"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	files    interfaces.FileRepository
	folders  interfaces.FolderRepository
	profiles interfaces.ProfileRepository
	users    interfaces.UserRepository
}

// closers run in reverse order on shutdown.
type closers []func(ctx context.Context) error

func (c closers) close(ctx context.Context, log *logger.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			log.WithError(err).Warn("Shutdown step failed")
		}
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
		Caller:     cfg.Log.Caller,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var shutdown closers
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		shutdown.close(closeCtx, appLogger)
	}()

	checks := make(map[string]handlers.HealthCheck)

	appCache, err := openCache(cfg, appLogger)
	if err != nil {
		return err
	}
	shutdown = append(shutdown, func(context.Context) error { return appCache.Close() })
	if pinger, ok := appCache.(interface{ Ping(context.Context) error }); ok {
		checks["cache"] = pinger.Ping
	}

	repos, err := openStore(ctx, cfg, appCache, appLogger, &shutdown, checks)
	if err != nil {
		return err
	}

	provider, err := storage.NewProvider(ctx, storage.Options{
		Provider:      cfg.Storage.Provider,
		LocalPath:     cfg.Storage.Local.BasePath,
		PublicBaseURL: cfg.Storage.Local.BaseURL,
		SigningSecret: cfg.Security.JWTSecret,
		S3: storage.S3Options{
			Region:    cfg.Storage.AWS.Region,
			Bucket:    cfg.Storage.AWS.Bucket,
			Endpoint:  cfg.Storage.AWS.Endpoint,
			PathStyle: cfg.Storage.AWS.PathStyle,
			CDNDomain: cfg.Storage.AWS.CDNDomain,
		},
		GCS: storage.GCSOptions{
			ProjectID:       cfg.Storage.GCP.ProjectID,
			Bucket:          cfg.Storage.GCP.Bucket,
			CredentialsFile: cfg.Storage.GCP.CredentialsFile,
			CDNDomain:       cfg.Storage.GCP.CDNDomain,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		shutdown = append(shutdown, func(context.Context) error { return closer.Close() })
	}
	appLogger.WithField("provider", cfg.Storage.Provider).Info("Object storage ready")

	verifier, err := openVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	// Live updates
	var (
		events    services.EventPublisher = services.NoopPublisher()
		wsHandler *websocket.Handler
	)
	if cfg.WebSocket.Enabled {
		hub := websocket.NewHub(appLogger)
		go hub.Run(ctx)
		events = hub
		wsHandler = websocket.NewHandler(hub, websocket.Options{
			ReadBufferSize:    cfg.WebSocket.ReadBufferSize,
			WriteBufferSize:   cfg.WebSocket.WriteBufferSize,
			HandshakeTimeout:  cfg.WebSocket.HandshakeTimeout,
			PingInterval:      cfg.WebSocket.PingInterval,
			PongTimeout:       cfg.WebSocket.PongTimeout,
			EnableCompression: cfg.WebSocket.EnableCompression,
			AllowedOrigins:    cfg.WebSocket.AllowedOrigins,
		}, appLogger)
	}

	// Services
	listings := services.NewListingCache(appCache, cfg.Redis.ListingTTL, appLogger)
	storageService := services.NewStorageService(repos.profiles, repos.files, cfg.Upload.DefaultStorageLimit, appLogger)
	fileService := services.NewFileService(
		repos.files,
		repos.folders,
		provider,
		storageService,
		services.NewThumbnailService(provider),
		listings,
		events,
		services.FileServiceConfig{
			MaxFileSize:        cfg.Upload.MaxFileSize,
			SignedURLTTL:       cfg.Storage.SignedURLTTL,
			Thumbnails:         cfg.Upload.Thumbnails,
			ThumbnailMaxSource: cfg.Upload.ThumbnailMaxSize,
		},
		appLogger,
	)
	folderService := services.NewFolderService(repos.folders, repos.files, storageService, listings, events, appLogger)
	authService := services.NewAuthService(repos.users, storageService, services.AuthServiceConfig{
		JWTSecret:         cfg.Security.JWTSecret,
		AccessTokenTTL:    cfg.Security.JWTAccessTokenTTL,
		RefreshTokenTTL:   cfg.Security.JWTRefreshTokenTTL,
		PasswordMinLength: cfg.Security.PasswordMinLength,
	}, appLogger)

	// Handlers and routes
	audit := logger.NewAuditLoggerFrom(appLogger)
	switch {
	case config.IsTest():
		gin.SetMode(gin.TestMode)
	case config.IsProduction() || !cfg.App.Debug:
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(&routes.Handlers{
		Health:    handlers.NewHealthHandler(cfg.App.Version, checks),
		Auth:      handlers.NewAuthHandler(authService, cfg.Auth.Provider == "jwt", audit),
		Files:     handlers.NewFileHandler(fileService, appLogger),
		Folders:   handlers.NewFolderHandler(folderService, audit),
		Storage:   handlers.NewStorageHandler(storageService),
		Objects:   handlers.NewObjectHandler(provider),
		WebSocket: wsHandler,
	}, verifier, routes.Options{
		CORSOrigins:   cfg.Security.CORSAllowedOrigins,
		MaxUploadSize: cfg.Upload.MaxFileSize,
		UploadsPath:   "/uploads",
	}, appLogger)
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"addr":        server.Addr,
			"environment": cfg.App.Environment,
			"auth":        cfg.Auth.Provider,
		}).Info("Starting server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openCache(cfg *config.Config, appLogger *logger.Logger) (cache.Cache, error) {
	if cfg.Redis.Driver != "redis" {
		appLogger.Info("Using in-memory cache")
		return cache.NewMemoryCache(time.Minute), nil
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	appLogger.WithField("host", cfg.Redis.Host).Info("Connected to redis")
	return redisCache, nil
}

func openStore(
	ctx context.Context,
	cfg *config.Config,
	appCache cache.Cache,
	appLogger *logger.Logger,
	shutdown *closers,
	checks map[string]handlers.HealthCheck,
) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		appLogger.Warn("Using in-memory store; data is lost on restart")
		return &repositories{
			files:    memory.NewFileRepository(),
			folders:  memory.NewFolderRepository(),
			profiles: memory.NewProfileRepository(),
			users:    memory.NewUserRepository(),
		}, nil
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return nil, err
	}
	*shutdown = append(*shutdown, db.Close)
	checks["database"] = db.Ping
	appLogger.WithField("database", cfg.Database.Database).Info("Connected to mongodb")

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &repositories{
		files:    mongodb.NewFileRepository(db.Database),
		folders:  mongodb.NewFolderRepository(db.Database),
		profiles: mongodb.NewProfileRepository(db.Database, appCache),
		users:    mongodb.NewUserRepository(db.Database),
	}, nil
}

func openVerifier(ctx context.Context, cfg *config.Config) (identity.Verifier, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		verifier, err := identity.NewFirebaseVerifier(ctx, identity.FirebaseOptions{
			ProjectID:       cfg.Auth.Firebase.ProjectID,
			CredentialsFile: cfg.Auth.Firebase.CredentialsFile,
			CheckRevoked:    cfg.Auth.Firebase.CheckRevoked,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
		}
		return verifier, nil
	default:
		return identity.NewJWTVerifier(cfg.Security.JWTSecret), nil
	}
}
