package store

import (
	"context"
	"path/filepath"
	"testing"

	tu "github.com/desertmoss/linkhive/internal/testing"
)

func TestFSStorage(t *testing.T) {
	t.Run("UploadWritesFileAndMapsURL", func(t *testing.T) {
		root := t.TempDir()
		storage := NewFSStorage(root, "http://cdn.test/")

		obj, err := storage.Upload(context.Background(), []byte("payload"), "favicons/abc.png", "image/png")
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}

		if obj.URL != "http://cdn.test/favicons/abc.png" {
			t.Errorf("url = %q", obj.URL)
		}
		if obj.Key != "favicons/abc.png" {
			t.Errorf("key = %q", obj.Key)
		}

		tu.AssertDirExists(t, filepath.Join(root, "favicons"))
		tu.AssertFileExists(t, filepath.Join(root, "favicons", "abc.png"))
		if data := tu.MustReadFile(t, filepath.Join(root, "favicons", "abc.png")); data != "payload" {
			t.Errorf("stored bytes = %q", data)
		}
	})

	t.Run("UploadOverwritesExistingKey", func(t *testing.T) {
		root := t.TempDir()
		storage := NewFSStorage(root, "http://cdn.test")

		if _, err := storage.Upload(context.Background(), []byte("old"), "k.png", "image/png"); err != nil {
			t.Fatalf("first upload failed: %v", err)
		}
		if _, err := storage.Upload(context.Background(), []byte("new"), "k.png", "image/png"); err != nil {
			t.Fatalf("second upload failed: %v", err)
		}

		if data := tu.MustReadFile(t, filepath.Join(root, "k.png")); data != "new" {
			t.Errorf("stored bytes = %q", data)
		}
	})

	t.Run("CancelledContextFails", func(t *testing.T) {
		storage := NewFSStorage(t.TempDir(), "http://cdn.test")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := storage.Upload(ctx, []byte("x"), "k.png", "image/png"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
