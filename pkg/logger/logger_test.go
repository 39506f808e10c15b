package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, format string) (*Logger, *bytes.Buffer) {
	t.Helper()
	log, err := NewLogger(&Config{Level: DebugLevel, Format: format, AppName: "CloudDrive", Version: "test"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	return log, buf
}

func TestLogger_JSONFields(t *testing.T) {
	log, buf := newBufferLogger(t, "json")

	log.WithUserID("user-1").WithError(errors.New("boom")).Info("upload failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "upload failed" {
		t.Errorf("Unexpected message: %v", entry["message"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("Expected user_id field, got %v", entry["user_id"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["app"] != "CloudDrive" {
		t.Errorf("Expected app field, got %v", entry["app"])
	}
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	log, buf := newBufferLogger(t, "json")

	child := log.WithField("file_id", "f1")
	_ = child
	log.Info("parent")

	if strings.Contains(buf.String(), "file_id") {
		t.Errorf("Parent logger leaked child field: %s", buf.String())
	}
}

func TestLogger_WithContext(t *testing.T) {
	log, buf := newBufferLogger(t, "text")

	ctx := ContextWithRequestID(ContextWithUserID(context.Background(), "u-9"), "req-1")
	log.WithContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "user_id=u-9") || !strings.Contains(out, "request_id=req-1") {
		t.Errorf("Expected context fields in output, got %q", out)
	}
}

func TestLogger_LogAPIRequestLevels(t *testing.T) {
	log, buf := newBufferLogger(t, "json")

	log.LogAPIRequest("GET", "/api/files", 500, 3*time.Millisecond, "u")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["level"] != "error" {
		t.Errorf("Expected error level for 5xx, got %v", entry["level"])
	}
	if entry["status_code"].(float64) != 500 {
		t.Errorf("Unexpected status_code: %v", entry["status_code"])
	}
}

func TestIsTerminal_NonTTYWriters(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("Buffer must not be treated as a terminal")
	}

	file, err := os.Create(filepath.Join(t.TempDir(), "app.log"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer file.Close()
	if isTerminal(file) {
		t.Error("Regular file must not be treated as a terminal")
	}
}

func TestLogger_TextColors(t *testing.T) {
	plain, buf := newBufferLogger(t, "text")
	plain.Warn("disk almost full")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("Expected no color codes for a buffer, got %q", buf.String())
	}

	colored, err := NewLogger(&Config{Level: DebugLevel, Format: "text", Colors: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	out := &bytes.Buffer{}
	colored.SetOutput(out)
	colored.Warn("disk almost full")
	if !strings.Contains(out.String(), "\033[33m") {
		t.Errorf("Expected forced yellow warning, got %q", out.String())
	}
}
