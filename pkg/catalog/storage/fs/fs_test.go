package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/portalkit/catalog/pkg/catalog"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "assets/2025/06/file.txt"

	// Upload
	data := []byte("hello fs")
	if err := backend.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// GetObjectMeta
	meta, err := backend.GetObjectMeta(ctx, key)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if meta.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), meta.Size)
	}
	if meta.ContentType == "" {
		t.Fatalf("expected detected content type")
	}

	// Download
	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	// Delete removes the file and prunes empty parents
	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "assets")); !os.IsNotExist(err) {
		t.Fatalf("expected empty parent dirs removed, stat err=%v", err)
	}
}

func TestFSBackend_MissingObject(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()

	var storageErr *catalog.StorageError
	if _, err := backend.Download(ctx, "no/such/key"); !errors.As(err, &storageErr) {
		t.Fatalf("expected *catalog.StorageError, got %v", err)
	}
	if storageErr.Backend != "fs" || storageErr.Op != "download" {
		t.Fatalf("unexpected error fields: %+v", storageErr)
	}
	if _, err := backend.GetObjectMeta(ctx, "no/such/key"); err == nil {
		t.Fatalf("expected error for missing meta")
	}
	if err := backend.Delete(ctx, "no/such/key"); err == nil {
		t.Fatalf("expected error for missing delete")
	}
}

func TestFSBackend_DownloadURL(t *testing.T) {
	tmp := t.TempDir()
	ctx := context.Background()

	noPrefix, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	if _, err := noPrefix.GetDownloadURL(ctx, "a/b", ""); err == nil {
		t.Fatalf("expected error without urlPrefix")
	}

	withPrefix, err := New(Config{BaseDir: tmp, URLPrefix: "http://localhost:8080/files"})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	u, err := withPrefix.GetDownloadURL(ctx, "a/b", "report v2.pdf")
	if err != nil {
		t.Fatalf("get download url: %v", err)
	}
	if !strings.HasPrefix(u, "http://localhost:8080/files/download/a/b") {
		t.Fatalf("unexpected url: %q", u)
	}
	if !strings.Contains(u, "filename=report+v2.pdf") {
		t.Fatalf("expected escaped filename in url: %q", u)
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without base directory")
	}
}
