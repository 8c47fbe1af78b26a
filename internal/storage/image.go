// Package storage keeps uploaded images on the local filesystem,
// laid out per owner: <dir>/<username>/profile_img and <dir>/<username>/post_images.
// The database only ever stores the returned filename.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// allowed upload extensions, same rule the upload form enforced
var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// SavePostImage stores an article image under the author's directory and
// returns the generated filename.
func (s *ImageStore) SavePostImage(owner, original string, r io.Reader) (string, error) {
	return s.save(filepath.Join(s.dir, owner, "post_images"), original, r)
}

// SaveAvatar stores a profile image under the user's directory. The previous
// avatar file is not removed here; callers overwrite the stored reference only.
func (s *ImageStore) SaveAvatar(owner, original string, r io.Reader) (string, error) {
	return s.save(filepath.Join(s.dir, owner, "profile_img"), original, r)
}

func (s *ImageStore) save(dir, original string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return name, nil
}

// Rename moves a user's directory when the username changes so stored
// filename references stay valid.
func (s *ImageStore) Rename(oldOwner, newOwner string) error {
	oldPath := filepath.Join(s.dir, oldOwner)
	if _, err := os.Stat(oldPath); os.IsNotExist(err) {
		return nil
	}
	return os.Rename(oldPath, filepath.Join(s.dir, newOwner))
}

// RemoveAll deletes every file belonging to the owner, used on account deletion.
func (s *ImageStore) RemoveAll(owner string) error {
	return os.RemoveAll(filepath.Join(s.dir, owner))
}
