package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"taskboard/internal/models"
)

// URLPrefix is where saved avatars are served from.
const URLPrefix = "/uploads/avatars/"

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarStore writes avatar images under <root>/avatars.
type AvatarStore struct {
	dir      string
	maxBytes int64
}

// NewAvatarStore creates the avatar directory. Call it once at startup.
func NewAvatarStore(root string, maxBytes int64) (*AvatarStore, error) {
	dir := filepath.Join(root, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &AvatarStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save sniffs the content type, enforces the size cap and writes the file.
// It returns the public URL of the stored image.
func (s *AvatarStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 {
		return "", &models.ValidationError{Field: "avatar", Message: "no file uploaded"}
	}
	if int64(len(data)) > s.maxBytes {
		return "", &models.ValidationError{Field: "avatar", Message: fmt.Sprintf("must not exceed %d bytes", s.maxBytes)}
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedAvatarTypes[mt.String()]
	if !ok {
		return "", &models.ValidationError{Field: "avatar", Message: "only jpeg, png, gif and webp images are allowed"}
	}

	name := "avatar-" + uuid.NewString() + ext
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

// Remove deletes a previously saved avatar. Unknown URLs are ignored.
func (s *AvatarStore) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func writeFileAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
