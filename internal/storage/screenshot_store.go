package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ScreenshotStore persists uploaded screenshots under a fixed directory.
// Files are keyed by a fresh UUID rather than the client-supplied name, so
// same-named uploads never collide and path traversal is impossible.
type ScreenshotStore struct {
	dir string
}

// NewScreenshotStore ensures the upload directory exists.
func NewScreenshotStore(dir string) (*ScreenshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ScreenshotStore{dir: dir}, nil
}

// Save writes the upload to disk and returns the stored relative path.
// Only the extension of the original filename is kept.
func (s *ScreenshotStore) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create screenshot file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write screenshot file: %w", err)
	}
	return path, nil
}
