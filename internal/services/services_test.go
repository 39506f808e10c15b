package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/repositories/interfaces"
	"clouddrive/internal/repositories/memory"
	"clouddrive/internal/utils"
	"clouddrive/pkg/cache"
	"clouddrive/pkg/logger"
	"clouddrive/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event *models.Event) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	files    FileService
	folders  FolderService
	quota    StorageService
	auth     AuthService
	fileRepo interfaces.FileRepository
	store    *storage.MemoryStorage
	events   *recordingPublisher
	listings *ListingCache
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()
	log := logger.NewNop()

	fileRepo := memory.NewFileRepository()
	folderRepo := memory.NewFolderRepository()
	profileRepo := memory.NewProfileRepository()
	userRepo := memory.NewUserRepository()
	store := storage.NewMemoryStorage("http://localhost/uploads", "secret")
	memCache := cache.NewMemoryCache(0)
	t.Cleanup(func() { memCache.Close() })

	events := &recordingPublisher{}
	listings := NewListingCache(memCache, time.Second, log)
	quota := NewStorageService(profileRepo, fileRepo, limit, log)

	return &fixture{
		files: NewFileService(fileRepo, folderRepo, store, quota, NewThumbnailService(store), listings, events,
			FileServiceConfig{MaxFileSize: 1024, SignedURLTTL: time.Minute, Thumbnails: true}, log),
		folders:  NewFolderService(folderRepo, fileRepo, quota, listings, events, log),
		quota:    quota,
		auth:     NewAuthService(userRepo, quota, AuthServiceConfig{JWTSecret: "secret", BcryptCost: 4}, log),
		fileRepo: fileRepo,
		store:    store,
		events:   events,
		listings: listings,
	}
}

func textUpload(name, body string, folder *primitive.ObjectID) *UploadInput {
	return &UploadInput{
		Name:     name,
		Size:     int64(len(body)),
		MimeType: "text/plain",
		Reader:   strings.NewReader(body),
		FolderID: folder,
	}
}

func TestFileService_UploadStoresObjectAndRow(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	view, err := f.files.Upload(ctx, "u1", textUpload("../../notes.txt", "hello", nil))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if view.Name != "notes.txt" || view.OriginalName != "notes.txt" {
		t.Errorf("Expected sanitized name, got %q / %q", view.Name, view.OriginalName)
	}
	if !strings.HasPrefix(view.StoragePath, "u1/") || !strings.HasSuffix(view.StoragePath, "-notes.txt") {
		t.Errorf("Unexpected storage path %q", view.StoragePath)
	}
	if view.Type != utils.ItemTypeFile || view.URL == "" {
		t.Errorf("Expected file view with url, got type=%q url=%q", view.Type, view.URL)
	}
	if ok, _ := f.store.FileExists(ctx, view.StoragePath); !ok {
		t.Error("Object missing from storage")
	}

	usage, err := f.quota.Usage(ctx, "u1")
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage.Used != 5 || usage.Total != utils.DefaultStorageLimit {
		t.Errorf("Unexpected usage %+v", usage)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != utils.EventFileUploaded {
		t.Errorf("Expected one upload event, got %v", got)
	}
}

func TestFileService_UploadRejections(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	missing := primitive.NewObjectID()

	cases := []struct {
		name  string
		input *UploadInput
		want  error
	}{
		{"no file", nil, utils.ErrNoFile},
		{"empty file", textUpload("a.txt", "", nil), utils.ErrNoFile},
		{"too large", textUpload("a.txt", strings.Repeat("x", 2048), nil), utils.ErrFileTooLarge},
		{"unknown folder", textUpload("a.txt", "x", &missing), utils.ErrFolderNotFound},
		{"over quota", textUpload("a.txt", "123456789", nil), utils.ErrQuotaExceeded},
	}
	for _, tc := range cases {
		if _, err := f.files.Upload(ctx, "u1", tc.input); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if f.store.Len() != 0 {
		t.Errorf("Rejected uploads must not store objects, have %d", f.store.Len())
	}
}

func TestFileService_UploadRollsBackObjectWhenRowFails(t *testing.T) {
	f := newFixture(t, 0)
	memory.FailCreate(f.fileRepo, errors.New("table offline"))

	if _, err := f.files.Upload(context.Background(), "u1", textUpload("a.txt", "data", nil)); err == nil {
		t.Fatal("Expected upload to fail")
	}
	if f.store.Len() != 0 {
		t.Errorf("Expected orphaned object to be removed, have %d objects", f.store.Len())
	}
}

func TestFileService_UploadStorageFailureCreatesNoRow(t *testing.T) {
	f := newFixture(t, 0)
	f.store.FailUploads(errors.New("bucket offline"))
	ctx := context.Background()

	if _, err := f.files.Upload(ctx, "u1", textUpload("a.txt", "data", nil)); err == nil {
		t.Fatal("Expected upload to fail")
	}
	listing, err := f.files.List(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listing.Files) != 0 {
		t.Errorf("Expected no rows, got %d", len(listing.Files))
	}
}

func TestFileService_ListFoldersFirstThenNewestFiles(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, _ = f.files.Upload(ctx, "u1", textUpload("old.txt", "1", nil))
	time.Sleep(2 * time.Millisecond)
	_, _ = f.files.Upload(ctx, "u1", textUpload("new.txt", "2", nil))
	_, _ = f.folders.Create(ctx, "u1", "b-folder", nil)
	_, _ = f.folders.Create(ctx, "u1", "a-folder", nil)

	listing, err := f.files.List(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	items := listing.Items()
	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(items))
	}
	if listing.Folders[0].Name != "a-folder" || listing.Folders[1].Name != "b-folder" {
		t.Errorf("Folders not sorted by name: %s, %s", listing.Folders[0].Name, listing.Folders[1].Name)
	}
	if listing.Files[0].Name != "new.txt" || listing.Files[1].Name != "old.txt" {
		t.Errorf("Files not newest first: %s, %s", listing.Files[0].Name, listing.Files[1].Name)
	}
	if _, ok := items[0].(*models.FolderView); !ok {
		t.Errorf("Expected folder first, got %T", items[0])
	}
}

func TestFileService_ListIsolatedPerUser(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, _ = f.files.Upload(ctx, "alice", textUpload("secret.txt", "x", nil))

	listing, err := f.files.List(ctx, "bob", nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listing.Files) != 0 {
		t.Errorf("Bob must not see Alice's files")
	}
}

func TestFileService_RenameTrimsAndRejectsEmpty(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	view, _ := f.files.Upload(ctx, "u1", textUpload("a.txt", "x", nil))

	renamed, err := f.files.Rename(ctx, "u1", view.ID, "  report.txt  ")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "report.txt" {
		t.Errorf("Expected trimmed name, got %q", renamed.Name)
	}
	if renamed.OriginalName != "a.txt" {
		t.Errorf("Rename must keep original name, got %q", renamed.OriginalName)
	}

	if _, err := f.files.Rename(ctx, "u1", view.ID, "   "); !errors.Is(err, utils.ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
	if _, err := f.files.Rename(ctx, "u2", view.ID, "x"); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
}

func TestFileService_MoveBetweenFolders(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	folder, _ := f.folders.Create(ctx, "u1", "docs", nil)
	view, _ := f.files.Upload(ctx, "u1", textUpload("a.txt", "x", nil))

	// Prime the cache so the move has to invalidate it.
	_, _ = f.files.List(ctx, "u1", nil)

	moved, err := f.files.Move(ctx, "u1", view.ID, &folder.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != folder.ID {
		t.Errorf("Expected file in docs, got %v", moved.FolderID)
	}

	root, _ := f.files.List(ctx, "u1", nil)
	if len(root.Files) != 0 {
		t.Errorf("Expected root listing to be invalidated, still has %d files", len(root.Files))
	}
	docs, _ := f.files.List(ctx, "u1", &folder.ID)
	if len(docs.Files) != 1 {
		t.Errorf("Expected one file in docs, got %d", len(docs.Files))
	}

	missing := primitive.NewObjectID()
	if _, err := f.files.Move(ctx, "u1", view.ID, &missing); !errors.Is(err, utils.ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound, got %v", err)
	}
	if _, err := f.files.Move(ctx, "u1", view.ID, nil); err != nil {
		t.Errorf("Move to root failed: %v", err)
	}
}

func TestFileService_DeleteIsSoftAndFreesQuota(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	view, _ := f.files.Upload(ctx, "u1", textUpload("a.txt", "12345", nil))

	if err := f.files.Delete(ctx, "u1", view.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.files.Get(ctx, "u1", view.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected deleted file to be hidden, got %v", err)
	}
	usage, _ := f.quota.Usage(ctx, "u1")
	if usage.Used != 0 {
		t.Errorf("Expected usage 0 after delete, got %d", usage.Used)
	}
	if ok, _ := f.store.FileExists(ctx, view.StoragePath); !ok {
		t.Error("Soft delete must keep the stored object")
	}
	if err := f.files.Delete(ctx, "u1", view.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Second delete expected ErrNotFound, got %v", err)
	}
}

func TestFileService_DownloadURLAndOpen(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	view, _ := f.files.Upload(ctx, "u1", textUpload("a.txt", "payload", nil))

	link, err := f.files.DownloadURL(ctx, "u1", view.ID)
	if err != nil {
		t.Fatalf("DownloadURL failed: %v", err)
	}
	if !strings.Contains(link.URL, "token=") || link.Name != "a.txt" {
		t.Errorf("Unexpected link %+v", link)
	}

	file, content, err := f.files.Open(ctx, "u1", view.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer content.Reader.Close()
	data, _ := io.ReadAll(content.Reader)
	if string(data) != "payload" || file.ID != view.ID {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestFileService_ThumbnailForImages(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	view, err := f.files.Upload(ctx, "u1", &UploadInput{
		Name:     "pic.png",
		Size:     int64(buf.Len()),
		MimeType: "image/png",
		Reader:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if view.ThumbnailPath != view.StoragePath+utils.ThumbnailSuffix {
		t.Errorf("Unexpected thumbnail path %q", view.ThumbnailPath)
	}
	if view.ThumbnailURL == "" {
		t.Error("Expected thumbnail url in view")
	}

	thumb, err := f.files.Thumbnail(ctx, "u1", view.ID)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	defer thumb.Reader.Close()
	if thumb.ContentType != "image/jpeg" {
		t.Errorf("Expected jpeg thumbnail, got %s", thumb.ContentType)
	}

	text, _ := f.files.Upload(ctx, "u1", textUpload("a.txt", "x", nil))
	if _, err := f.files.Thumbnail(ctx, "u1", text.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for text file thumbnail, got %v", err)
	}
}

func TestFolderService_CreateAndConflicts(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	docs, err := f.folders.Create(ctx, "u1", "  docs ", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if docs.Name != "docs" || docs.Path != "/docs" || docs.Type != utils.ItemTypeFolder {
		t.Errorf("Unexpected folder %+v", docs.Folder)
	}

	if _, err := f.folders.Create(ctx, "u1", "docs", nil); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate, got %v", err)
	}
	if _, err := f.folders.Create(ctx, "u2", "docs", nil); err != nil {
		t.Errorf("Other users may reuse the name: %v", err)
	}
	if _, err := f.folders.Create(ctx, "u1", "", nil); !errors.Is(err, utils.ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
	missing := primitive.NewObjectID()
	if _, err := f.folders.Create(ctx, "u1", "x", &missing); !errors.Is(err, utils.ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound, got %v", err)
	}

	nested, err := f.folders.Create(ctx, "u1", "2024", &docs.ID)
	if err != nil {
		t.Fatalf("Nested create failed: %v", err)
	}
	if nested.Path != "/docs/2024" {
		t.Errorf("Expected /docs/2024, got %s", nested.Path)
	}
}

func TestFolderService_GetBreadcrumbs(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	a, _ := f.folders.Create(ctx, "u1", "a", nil)
	b, _ := f.folders.Create(ctx, "u1", "b", &a.ID)
	c, _ := f.folders.Create(ctx, "u1", "c", &b.ID)

	detail, err := f.folders.Get(ctx, "u1", c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	var names []string
	for _, crumb := range detail.Breadcrumbs {
		names = append(names, crumb.Name)
	}
	if strings.Join(names, "/") != "root/a/b/c" {
		t.Errorf("Unexpected breadcrumbs %v", names)
	}
	if detail.Breadcrumbs[0].ID != nil {
		t.Error("Root crumb must have no id")
	}
}

func TestFolderService_RenameRewritesPaths(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	docs, _ := f.folders.Create(ctx, "u1", "docs", nil)
	nested, _ := f.folders.Create(ctx, "u1", "2024", &docs.ID)
	_, _ = f.folders.Create(ctx, "u1", "papers", nil)

	if _, err := f.folders.Rename(ctx, "u1", docs.ID, "papers"); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	renamed, err := f.folders.Rename(ctx, "u1", docs.ID, "archive")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Path != "/archive" {
		t.Errorf("Expected /archive, got %s", renamed.Path)
	}

	detail, _ := f.folders.Get(ctx, "u1", nested.ID)
	if detail.Path != "/archive/2024" {
		t.Errorf("Expected nested path rewritten, got %s", detail.Path)
	}
}

func TestFolderService_DeleteCascades(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	top, _ := f.folders.Create(ctx, "u1", "top", nil)
	child, _ := f.folders.Create(ctx, "u1", "child", &top.ID)
	_, _ = f.files.Upload(ctx, "u1", textUpload("a.txt", "123", &top.ID))
	_, _ = f.files.Upload(ctx, "u1", textUpload("b.txt", "45", &child.ID))
	_, _ = f.files.Upload(ctx, "u1", textUpload("keep.txt", "6", nil))

	result, err := f.folders.Delete(ctx, "u1", top.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if result.Folders != 2 || result.Files != 2 {
		t.Errorf("Unexpected result %+v", result)
	}

	usage, _ := f.quota.Usage(ctx, "u1")
	if usage.Used != 1 {
		t.Errorf("Expected 1 byte used, got %d", usage.Used)
	}

	root, _ := f.files.List(ctx, "u1", nil)
	if len(root.Folders) != 0 || len(root.Files) != 1 {
		t.Errorf("Unexpected root listing: %d folders, %d files", len(root.Folders), len(root.Files))
	}
	if _, err := f.files.List(ctx, "u1", &child.ID); !errors.Is(err, utils.ErrFolderNotFound) {
		t.Errorf("Expected deleted child to be gone, got %v", err)
	}
}

func TestStorageService_ProfileLifecycle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	usage, err := f.quota.Usage(ctx, "fresh")
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if usage.Used != 0 || usage.Total != 1000*1024*1024 {
		t.Errorf("Unexpected default usage %+v", usage)
	}

	name := "Ada"
	profile, err := f.quota.UpdateProfile(ctx, "fresh", &UpdateProfileInput{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if profile.FullName != "Ada" {
		t.Errorf("Expected name Ada, got %q", profile.FullName)
	}
}

func TestAuthService_RegisterLoginRefresh(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, &RegisterInput{Email: " Ada@Example.com ", Password: "password1", FullName: "Ada"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.User.Email != "ada@example.com" || reg.Tokens.AccessToken == "" {
		t.Errorf("Unexpected register result %+v", reg.User)
	}
	if reg.Profile.ID != reg.User.ID.Hex() {
		t.Errorf("Profile must be keyed by user id")
	}

	if _, err := f.auth.Register(ctx, &RegisterInput{Email: "ada@example.com", Password: "password1"}); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if _, err := f.auth.Register(ctx, &RegisterInput{Email: "b@example.com", Password: "short"}); !errors.Is(err, utils.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for short password, got %v", err)
	}

	if _, err := f.auth.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong-password"}); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.auth.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "password1"}); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	login, err := f.auth.Login(ctx, &LoginInput{Email: "ADA@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	tokens, err := f.auth.Refresh(ctx, login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("Expected new access token")
	}
	if _, err := f.auth.Refresh(ctx, login.Tokens.AccessToken); !errors.Is(err, utils.ErrInvalidToken) {
		t.Errorf("Access token must not refresh, got %v", err)
	}
}
