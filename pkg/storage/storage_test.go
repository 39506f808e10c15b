package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func uploadString(t *testing.T, p StorageProvider, key, body string, overwrite bool) error {
	t.Helper()
	_, err := p.Upload(context.Background(), &UploadRequest{
		Key:         key,
		Reader:      strings.NewReader(body),
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Overwrite:   overwrite,
	})
	return err
}

func readAll(t *testing.T, p StorageProvider, key string) string {
	t.Helper()
	resp, err := p.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer resp.Reader.Close()
	data, err := io.ReadAll(resp.Reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func exerciseProvider(t *testing.T, p StorageProvider) {
	ctx := context.Background()

	if err := uploadString(t, p, "u1/100-a.txt", "hello", false); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if got := readAll(t, p, "u1/100-a.txt"); got != "hello" {
		t.Errorf("Expected 'hello', got %q", got)
	}

	if err := uploadString(t, p, "u1/100-a.txt", "other", false); !errors.Is(err, ErrObjectExists) {
		t.Errorf("Expected ErrObjectExists without overwrite, got %v", err)
	}
	if err := uploadString(t, p, "u1/100-a.txt", "again", true); err != nil {
		t.Errorf("Overwrite failed: %v", err)
	}

	_ = uploadString(t, p, "u2/1-b.txt", "x", false)
	files, err := p.ListFiles(ctx, "u1/")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 1 || files[0].Key != "u1/100-a.txt" {
		t.Errorf("Unexpected listing: %+v", files)
	}

	info, err := p.GetFileInfo(ctx, "u1/100-a.txt")
	if err != nil || info.Size != 5 {
		t.Errorf("Unexpected info %+v (%v)", info, err)
	}

	if err := p.Delete(ctx, "u1/100-a.txt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := p.FileExists(ctx, "u1/100-a.txt"); ok {
		t.Error("Object still exists after delete")
	}
	if _, err := p.Download(ctx, "u1/100-a.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Expected ErrObjectNotFound, got %v", err)
	}

	if err := uploadString(t, p, "../escape.txt", "x", false); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey for traversal, got %v", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseProvider(t, NewMemoryStorage("http://localhost/uploads", "secret"))
}

func TestLocalStorage(t *testing.T) {
	p, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads", "secret")
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	exerciseProvider(t, p)
}

func TestMemoryStorage_FailUploads(t *testing.T) {
	p := NewMemoryStorage("http://localhost/uploads", "secret")
	boom := errors.New("bucket offline")
	p.FailUploads(boom)

	if err := uploadString(t, p, "u/k", "x", false); !errors.Is(err, boom) {
		t.Fatalf("Expected injected error, got %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Failed upload must not store an object")
	}
}

func TestURLSigner_SignAndVerify(t *testing.T) {
	signer := NewURLSigner("secret", "http://localhost/uploads/")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	raw, err := signer.Sign("u1/1-my file.txt", 60*time.Second)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !strings.HasPrefix(raw, "http://localhost/uploads/u1/1-my%20file.txt?token=") {
		t.Errorf("Unexpected signed URL: %s", raw)
	}

	parsed, _ := url.Parse(raw)
	token := parsed.Query().Get("token")

	if err := signer.Verify("u1/1-my file.txt", token); err != nil {
		t.Errorf("Expected valid token, got %v", err)
	}
	if err := signer.Verify("u1/other.txt", token); !errors.Is(err, ErrInvalidURLToken) {
		t.Errorf("Token must be bound to its key, got %v", err)
	}

	now = now.Add(61 * time.Second)
	if err := signer.Verify("u1/1-my file.txt", token); !errors.Is(err, ErrInvalidURLToken) {
		t.Errorf("Expected expired token to fail, got %v", err)
	}
}

func TestURLSigner_RejectsTokensSignedWithRawSecret(t *testing.T) {
	signer := NewURLSigner("secret", "http://localhost/uploads")

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1/1-a.txt",
		Audience:  jwt.ClaimStrings{URLAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if err := signer.Verify("u1/1-a.txt", forged); !errors.Is(err, ErrInvalidURLToken) {
		t.Errorf("Expected raw-secret token to be rejected, got %v", err)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(context.Background(), Options{Provider: "ftp"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
