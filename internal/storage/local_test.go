package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return s, dir
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	s, _ := newTestLocal(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "abc.wav", strings.NewReader("audio bytes")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	rc, err := s.Download(ctx, "abc.wav")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestDownloadMissing(t *testing.T) {
	s, _ := newTestLocal(t)
	if _, err := s.Download(context.Background(), "nope.wav"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestLocal(t)
	ctx := context.Background()

	if err := s.Upload(ctx, "abc.wav", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Delete(ctx, "abc.wav"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "abc.wav"); err != nil {
		t.Errorf("second delete: %v", err)
	}

	exists, err := s.Exists(ctx, "abc.wav")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("deleted file still exists")
	}
}

func TestExists(t *testing.T) {
	s, _ := newTestLocal(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "abc.wav")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("missing file reported as existing")
	}

	if err := s.Upload(ctx, "abc.wav", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	exists, err = s.Exists(ctx, "abc.wav")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("uploaded file reported as missing")
	}
}

func TestResolveConfinesToBase(t *testing.T) {
	s, dir := newTestLocal(t)

	got := s.Resolve("../../etc/passwd")
	if !strings.HasPrefix(got, dir) {
		t.Errorf("Resolve escaped the base directory: %q", got)
	}
	if got != filepath.Join(dir, "etc", "passwd") {
		t.Errorf("Resolve = %q", got)
	}
}
