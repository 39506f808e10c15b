package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("AUTH_PROVIDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Port != 5000 {
		t.Errorf("Expected default port 5000, got %d", cfg.App.Port)
	}
	if cfg.Upload.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected 50MB upload limit, got %d", cfg.Upload.MaxFileSize)
	}
	if cfg.Upload.DefaultStorageLimit != 1000*1024*1024 {
		t.Errorf("Expected 1000MB quota, got %d", cfg.Upload.DefaultStorageLimit)
	}
	if cfg.Storage.SignedURLTTL != 60*time.Second {
		t.Errorf("Expected 60s signed URL TTL, got %v", cfg.Storage.SignedURLTTL)
	}
	if cfg.Redis.ListingTTL != time.Second {
		t.Errorf("Expected 1s listing TTL, got %v", cfg.Redis.ListingTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_PROVIDER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UPLOAD_MAX_FILE_SIZE", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.App.Port)
	}
	if cfg.Storage.Provider != "memory" {
		t.Errorf("Expected memory provider, got %s", cfg.Storage.Provider)
	}
	if len(cfg.Security.CORSAllowedOrigins) != 2 || cfg.Security.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected CORS origins: %v", cfg.Security.CORSAllowedOrigins)
	}
	if cfg.Upload.MaxFileSize != 1024 {
		t.Errorf("Expected max file size 1024, got %d", cfg.Upload.MaxFileSize)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  port: 7000
storage:
  provider: memory
  bucket: drive
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Port != 7000 {
		t.Errorf("Expected port 7000 from file, got %d", cfg.App.Port)
	}
	if cfg.Storage.Bucket != "drive" {
		t.Errorf("Expected bucket 'drive', got %s", cfg.Storage.Bucket)
	}
	// Sections not mentioned in the file keep their env defaults.
	if cfg.Upload.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default upload limit to survive, got %d", cfg.Upload.MaxFileSize)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "ftp")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown storage provider")
	}
}
