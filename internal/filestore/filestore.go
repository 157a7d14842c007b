// Package filestore persists uploaded profile images on local disk and
// hands back opaque path references for the user domain to store.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agrosig/agrosig-api/pkg/utilities"
)

// ErrUnsupportedImage is returned for anything that is not a png or jpg.
var ErrUnsupportedImage = errors.New("only png and jpg images are accepted")

// Store writes uploads under a base directory.
type Store struct {
	dir string
}

// DirFromEnv returns the uploads directory from UPLOAD_DIR or the default.
func DirFromEnv() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return filepath.Join("uploads", "profile")
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// SaveProfileImage streams the upload to disk under a ksuid-based filename
// and returns the stored path.
func (s *Store) SaveProfileImage(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".png" && ext != ".jpg" {
		return "", ErrUnsupportedImage
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	path := filepath.Join(s.dir, "image-"+utilities.NewKSUID()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write image file: %w", err)
	}
	return path, nil
}

// Remove deletes a previously stored image. A missing file is not an error;
// paths outside the uploads directory are refused.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove file outside uploads dir: %s", path)
	}
	if err := os.Remove(cleaned); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
