package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	etag         string
	lastModified time.Time
}

// MemoryStorage keeps objects in process memory. It backs tests and the
// single-binary dev mode.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject
	signer  *URLSigner

	// failUploads lets tests simulate an unavailable bucket.
	failUploads error
}

func NewMemoryStorage(baseURL, signingSecret string) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]*memoryObject),
		signer:  NewURLSigner(signingSecret, baseURL),
	}
}

// FailUploads makes every following Upload return err; nil restores it.
func (m *MemoryStorage) FailUploads(err error) {
	m.mu.Lock()
	m.failUploads = err
	m.mu.Unlock()
}

func (m *MemoryStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	if _, err := cleanKey(request.Key); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	sum := md5.Sum(data)
	object := &memoryObject{
		data:         data,
		contentType:  request.ContentType,
		metadata:     request.Metadata,
		etag:         hex.EncodeToString(sum[:]),
		lastModified: time.Now(),
	}
	if object.contentType == "" {
		object.contentType = contentTypeOf(request.Key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUploads != nil {
		return nil, m.failUploads
	}
	if _, exists := m.objects[request.Key]; exists && !request.Overwrite {
		return nil, fmt.Errorf("%w: %s", ErrObjectExists, request.Key)
	}
	m.objects[request.Key] = object

	return &UploadResponse{
		Key:  request.Key,
		URL:  m.PublicURL(request.Key),
		Size: int64(len(data)),
		ETag: object.etag,
	}, nil
}

func (m *MemoryStorage) get(key string) (*memoryObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	object, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return object, nil
}

func (m *MemoryStorage) Download(ctx context.Context, key string) (*DownloadResponse, error) {
	object, err := m.get(key)
	if err != nil {
		return nil, err
	}

	return &DownloadResponse{
		Reader:       io.NopCloser(bytes.NewReader(object.data)),
		Size:         int64(len(object.data)),
		ContentType:  object.contentType,
		Metadata:     object.metadata,
		LastModified: object.lastModified,
		ETag:         object.etag,
	}, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) GetURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if _, err := m.get(key); err != nil {
		return "", err
	}
	return m.signer.Sign(key, expiration)
}

func (m *MemoryStorage) PublicURL(key string) string {
	return m.signer.PublicURL(key)
}

func (m *MemoryStorage) VerifyURLToken(key, token string) error {
	return m.signer.Verify(key, token)
}

func (m *MemoryStorage) ListFiles(ctx context.Context, prefix string) ([]*FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*FileInfo, 0)
	for key, object := range m.objects {
		if strings.HasPrefix(key, prefix) {
			files = append(files, m.info(key, object))
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

func (m *MemoryStorage) FileExists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStorage) GetFileInfo(ctx context.Context, key string) (*FileInfo, error) {
	object, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return m.info(key, object), nil
}

func (m *MemoryStorage) info(key string, object *memoryObject) *FileInfo {
	return &FileInfo{
		Key:          key,
		Size:         int64(len(object.data)),
		ContentType:  object.contentType,
		LastModified: object.lastModified,
		ETag:         object.etag,
		Metadata:     object.metadata,
		URL:          m.PublicURL(key),
	}
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
