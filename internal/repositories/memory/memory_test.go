package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"clouddrive/internal/models"
	"clouddrive/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFileRepository_ScopedToOwner(t *testing.T) {
	repo := NewFileRepository()
	ctx := context.Background()

	file := &models.File{Name: "a.txt", UserID: "alice", Size: 10}
	if err := repo.Create(ctx, file); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, "bob", file.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user, got %v", err)
	}
	if _, err := repo.Update(ctx, "bob", file.ID, map[string]interface{}{"name": "x"}); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when another user renames, got %v", err)
	}
	if err := repo.SoftDelete(ctx, "bob", file.ID, time.Now()); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("Expected ErrNotFound when another user deletes, got %v", err)
	}

	got, err := repo.GetByID(ctx, "alice", file.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "a.txt" {
		t.Errorf("Expected name a.txt, got %q", got.Name)
	}
}

func TestFileRepository_ListNewestFirstAndExcludesDeleted(t *testing.T) {
	repo := NewFileRepository()
	ctx := context.Background()
	folder := primitive.NewObjectID()

	first := &models.File{Name: "first", UserID: "u"}
	second := &models.File{Name: "second", UserID: "u"}
	inFolder := &models.File{Name: "nested", UserID: "u", FolderID: &folder}
	gone := &models.File{Name: "gone", UserID: "u"}
	for _, f := range []*models.File{first, second, inFolder, gone} {
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.SoftDelete(ctx, "u", gone.ID, time.Now()); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	root, err := repo.ListByFolder(ctx, "u", nil)
	if err != nil {
		t.Fatalf("ListByFolder failed: %v", err)
	}
	if len(root) != 2 {
		t.Fatalf("Expected 2 root files, got %d", len(root))
	}
	if root[0].Name != "second" || root[1].Name != "first" {
		t.Errorf("Expected newest first, got %s, %s", root[0].Name, root[1].Name)
	}

	nested, _ := repo.ListByFolder(ctx, "u", &folder)
	if len(nested) != 1 || nested[0].Name != "nested" {
		t.Errorf("Unexpected folder listing: %+v", nested)
	}
}

func TestFileRepository_SumSizesIgnoresDeleted(t *testing.T) {
	repo := NewFileRepository()
	ctx := context.Background()

	a := &models.File{UserID: "u", Size: 100}
	b := &models.File{UserID: "u", Size: 50}
	other := &models.File{UserID: "v", Size: 1000}
	for _, f := range []*models.File{a, b, other} {
		_ = repo.Create(ctx, f)
	}
	_ = repo.SoftDelete(ctx, "u", b.ID, time.Now())

	total, err := repo.SumSizes(ctx, "u")
	if err != nil {
		t.Fatalf("SumSizes failed: %v", err)
	}
	if total != 100 {
		t.Errorf("Expected 100, got %d", total)
	}
}

func TestFileRepository_UpdateMovesToRoot(t *testing.T) {
	repo := NewFileRepository()
	ctx := context.Background()
	folder := primitive.NewObjectID()

	file := &models.File{UserID: "u", FolderID: &folder}
	_ = repo.Create(ctx, file)

	var root *primitive.ObjectID
	moved, err := repo.Update(ctx, "u", file.ID, map[string]interface{}{"folder_id": root})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if moved.FolderID != nil {
		t.Errorf("Expected file in root, got %v", moved.FolderID)
	}
	if n, _ := repo.CountByFolder(ctx, "u", nil); n != 1 {
		t.Errorf("Expected 1 file in root, got %d", n)
	}
}

func TestFileRepository_RejectedUpdateLeavesRowUnchanged(t *testing.T) {
	repo := NewFileRepository()
	ctx := context.Background()

	file := &models.File{Name: "a.txt", UserID: "u"}
	_ = repo.Create(ctx, file)

	// Map order is random; repeat so the valid field is often visited first.
	for i := 0; i < 20; i++ {
		_, err := repo.Update(ctx, "u", file.ID, map[string]interface{}{"name": "b.txt", "owner": "mallory"})
		if !errors.Is(err, utils.ErrInvalidInput) {
			t.Fatalf("Expected ErrInvalidInput, got %v", err)
		}
		_, err = repo.Update(ctx, "u", file.ID, map[string]interface{}{"name": "b.txt", "mime_type": 42})
		if !errors.Is(err, utils.ErrInvalidInput) {
			t.Fatalf("Expected ErrInvalidInput for a non-string value, got %v", err)
		}
	}

	got, _ := repo.GetByID(ctx, "u", file.ID)
	if got.Name != "a.txt" {
		t.Errorf("Rejected update must not rename, got %q", got.Name)
	}
}

func TestFileRepository_FailCreate(t *testing.T) {
	repo := NewFileRepository()
	boom := errors.New("table unavailable")
	FailCreate(repo, boom)

	if err := repo.Create(context.Background(), &models.File{UserID: "u"}); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}
}

func TestFolderRepository_DescendantsAndSoftDelete(t *testing.T) {
	repo := NewFolderRepository()
	ctx := context.Background()

	top := &models.Folder{Name: "top", UserID: "u", Path: "/top"}
	_ = repo.Create(ctx, top)
	child := &models.Folder{Name: "child", UserID: "u", ParentID: &top.ID, Path: "/top/child"}
	_ = repo.Create(ctx, child)
	grandchild := &models.Folder{Name: "grand", UserID: "u", ParentID: &child.ID, Path: "/top/child/grand"}
	_ = repo.Create(ctx, grandchild)
	sibling := &models.Folder{Name: "sibling", UserID: "u", Path: "/sibling"}
	_ = repo.Create(ctx, sibling)

	ids, err := repo.ListDescendantIDs(ctx, "u", top.ID)
	if err != nil {
		t.Fatalf("ListDescendantIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 descendants, got %d", len(ids))
	}

	n, err := repo.SoftDelete(ctx, "u", append(ids, top.ID), time.Now())
	if err != nil || n != 3 {
		t.Fatalf("Expected 3 deleted folders, got %d (%v)", n, err)
	}

	root, _ := repo.ListChildren(ctx, "u", nil)
	if len(root) != 1 || root[0].Name != "sibling" {
		t.Errorf("Expected only sibling in root, got %+v", root)
	}
	if _, err := repo.GetByID(ctx, "u", child.ID); !errors.Is(err, utils.ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound for deleted folder, got %v", err)
	}
}

func TestFolderRepository_ListChildrenSortedByName(t *testing.T) {
	repo := NewFolderRepository()
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_ = repo.Create(ctx, &models.Folder{Name: name, UserID: "u"})
	}

	folders, _ := repo.ListChildren(ctx, "u", nil)
	if len(folders) != 3 || folders[0].Name != "alpha" || folders[2].Name != "zeta" {
		t.Errorf("Unexpected order: %v, %v, %v", folders[0].Name, folders[1].Name, folders[2].Name)
	}
}

func TestFolderRepository_ExistsByNameAndPathRewrite(t *testing.T) {
	repo := NewFolderRepository()
	ctx := context.Background()

	docs := &models.Folder{Name: "docs", UserID: "u", Path: "/docs"}
	_ = repo.Create(ctx, docs)
	nested := &models.Folder{Name: "2024", UserID: "u", ParentID: &docs.ID, Path: "/docs/2024"}
	_ = repo.Create(ctx, nested)

	if ok, _ := repo.ExistsByName(ctx, "u", nil, "docs"); !ok {
		t.Error("Expected docs to exist in root")
	}
	if ok, _ := repo.ExistsByName(ctx, "other", nil, "docs"); ok {
		t.Error("Name check must be scoped to the owner")
	}

	if err := repo.ReplacePathPrefix(ctx, "u", "/docs", "/papers"); err != nil {
		t.Fatalf("ReplacePathPrefix failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "u", nested.ID)
	if got.Path != "/papers/2024" {
		t.Errorf("Expected /papers/2024, got %s", got.Path)
	}
}

func TestFolderRepository_RejectedUpdateLeavesRowUnchanged(t *testing.T) {
	repo := NewFolderRepository()
	ctx := context.Background()

	docs := &models.Folder{Name: "docs", UserID: "u", Path: "/docs"}
	_ = repo.Create(ctx, docs)

	for i := 0; i < 20; i++ {
		_, err := repo.Update(ctx, "u", docs.ID, map[string]interface{}{"name": "papers", "path": "/papers", "color": "red"})
		if !errors.Is(err, utils.ErrInvalidInput) {
			t.Fatalf("Expected ErrInvalidInput, got %v", err)
		}
	}

	got, _ := repo.GetByID(ctx, "u", docs.ID)
	if got.Name != "docs" || got.Path != "/docs" {
		t.Errorf("Rejected update must leave the folder as is, got %q %q", got.Name, got.Path)
	}
}

func TestProfileRepository_CreateConflict(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	profile := &models.Profile{ID: "u", StorageLimit: 10}
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, &models.Profile{ID: "u"}); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	if err := repo.SetStorageUsed(ctx, "u", 7); err != nil {
		t.Fatalf("SetStorageUsed failed: %v", err)
	}
	got, _ := repo.GetByUserID(ctx, "u")
	if got.StorageUsed != 7 {
		t.Errorf("Expected 7 bytes used, got %d", got.StorageUsed)
	}
}

func TestUserRepository_EmailUnique(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{Email: "a@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, &models.User{Email: "a@example.com"}); !errors.Is(err, utils.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	user, err := repo.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if err := repo.UpdateLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, user.ID)
	if got.LastLoginAt == nil {
		t.Error("Expected last login to be recorded")
	}
}
