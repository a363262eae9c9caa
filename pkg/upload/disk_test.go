package upload_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobarber/web/pkg/upload"
)

func TestDiskStoreSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore error: %v", err)
	}
	ctx := context.Background()

	f, err := store.Save(ctx, "me.PNG", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasSuffix(f.ID, ".png") {
		t.Errorf("ID = %q, want .png extension", f.ID)
	}
	if f.Size != int64(len("png-bytes")) {
		t.Errorf("Size = %d", f.Size)
	}

	opened, err := store.Open(ctx, f.ID)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	data, _ := io.ReadAll(opened.Reader)
	opened.Close()
	if string(data) != "png-bytes" {
		t.Errorf("content = %q", data)
	}
	if opened.Filename != "me.PNG" || opened.ContentType != "image/png" {
		t.Errorf("metadata = %+v", opened)
	}

	if err := store.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Open(ctx, f.ID); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("Open after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, f.ID); err != nil {
		t.Errorf("second Delete error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files left behind: %d", len(entries))
	}
}

func TestDiskStoreTooLarge(t *testing.T) {
	dir := t.TempDir()
	store, _ := upload.NewDiskStore(dir, 4)

	_, err := store.Save(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("12345"))
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Fatalf("Save error = %v, want ErrTooLarge", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("partial file left behind")
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, _ := upload.NewDiskStore(filepath.Join(dir, "files"), 0)
	os.WriteFile(filepath.Join(dir, "secret"), []byte("x"), 0644)

	for _, id := range []string{"../secret", "..", "", `a\b`} {
		if _, err := store.Open(context.Background(), id); !errors.Is(err, upload.ErrNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDiskStoreCancelledContext(t *testing.T) {
	store, _ := upload.NewDiskStore(t.TempDir(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "a.png", "image/png", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save error = %v, want context.Canceled", err)
	}
}
