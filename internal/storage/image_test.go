package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSavePostImage(t *testing.T) {
	store := NewImageStore(t.TempDir())

	name, err := store.SavePostImage("eva", "photo.JPG", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("SavePostImage failed: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("expected lowercased extension, got %s", name)
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	store := NewImageStore(t.TempDir())

	if _, err := store.SavePostImage("eva", "script.exe", strings.NewReader("x")); err == nil {
		t.Error("expected unsupported extension to be rejected")
	}
}

func TestRenameMovesOwnerDir(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	name, err := store.SaveAvatar("olduser", "a.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("SaveAvatar failed: %v", err)
	}
	if err := store.Rename("olduser", "newuser"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "newuser", "profile_img", name)); err != nil {
		t.Errorf("expected file under new owner dir: %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir)

	if _, err := store.SaveAvatar("eva", "a.png", strings.NewReader("x")); err != nil {
		t.Fatalf("SaveAvatar failed: %v", err)
	}
	if err := store.RemoveAll("eva"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "eva")); !os.IsNotExist(err) {
		t.Error("expected owner dir to be gone")
	}
}
