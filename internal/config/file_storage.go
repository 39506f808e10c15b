package config

import "time"

type StorageConfig struct {
	Provider     string              `yaml:"provider"` // local, s3, gcs, memory
	Bucket       string              `yaml:"bucket"`
	SignedURLTTL time.Duration       `yaml:"signed_url_ttl"`
	Local        *LocalStorageConfig `yaml:"local"`
	AWS          *AWSStorageConfig   `yaml:"aws"`
	GCP          *GCPStorageConfig   `yaml:"gcp"`
}

type LocalStorageConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

type AWSStorageConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
	CDNDomain string `yaml:"cdn_domain"`
}

type GCPStorageConfig struct {
	ProjectID       string `yaml:"project_id"`
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	CDNDomain       string `yaml:"cdn_domain"`
}

type UploadConfig struct {
	MaxFileSize         int64 `yaml:"max_file_size"`
	DefaultStorageLimit int64 `yaml:"default_storage_limit"`
	Thumbnails          bool  `yaml:"thumbnails"`
	ThumbnailMaxSize    int64 `yaml:"thumbnail_max_size"`
}

func loadStorageConfig() *StorageConfig {
	bucket := getEnv("STORAGE_BUCKET", "files")
	return &StorageConfig{
		Provider:     getEnv("STORAGE_PROVIDER", "local"),
		Bucket:       bucket,
		SignedURLTTL: getEnvAsDuration("STORAGE_SIGNED_URL_TTL", 60*time.Second),
		Local: &LocalStorageConfig{
			BasePath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			BaseURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:5000/uploads"),
		},
		AWS: &AWSStorageConfig{
			Region:    getEnv("AWS_S3_REGION", "us-east-1"),
			Bucket:    getEnv("AWS_S3_BUCKET", bucket),
			Endpoint:  getEnv("AWS_S3_ENDPOINT", ""),
			PathStyle: getEnvAsBool("AWS_S3_PATH_STYLE", false),
			CDNDomain: getEnv("AWS_CLOUDFRONT_DOMAIN", ""),
		},
		GCP: &GCPStorageConfig{
			ProjectID:       getEnv("GCP_PROJECT_ID", ""),
			Bucket:          getEnv("GCP_STORAGE_BUCKET", bucket),
			CredentialsFile: getEnv("GCP_CREDENTIALS_FILE", ""),
			CDNDomain:       getEnv("GCP_CDN_DOMAIN", ""),
		},
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxFileSize:         getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 50*1024*1024),
		DefaultStorageLimit: getEnvAsInt64("DEFAULT_STORAGE_LIMIT", 1000*1024*1024),
		Thumbnails:          getEnvAsBool("UPLOAD_THUMBNAILS", true),
		ThumbnailMaxSize:    getEnvAsInt64("UPLOAD_THUMBNAIL_MAX_SOURCE", 20*1024*1024),
	}
}
