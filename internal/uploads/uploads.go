// Package uploads persists product images on disk under opaque UUID keys.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/utils"
)

// Store is the image persistence interface consumed by the product service.
type Store interface {
	// Save validates the upload and writes it under a fresh storage key,
	// returning the key. The key is not a URL; URL building is a
	// presentation concern.
	Save(img model.ImageUpload) (string, error)
	// DeleteIfExists removes the file for key, best-effort. A blank key is
	// a no-op and I/O failures are swallowed.
	DeleteIfExists(key string)
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// DiskStore is a directory-backed Store
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir. The directory is created
// lazily on the first save.
func NewDiskStore(dir string) *DiskStore {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &DiskStore{dir: abs}
}

// Save writes the image atomically: the payload goes to a temp file in the
// target directory first and is renamed into place, so readers never observe
// a partial image.
func (s *DiskStore) Save(img model.ImageUpload) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("uploads: %w: image file is required", auctionerrors.ErrInvalidInput)
	}
	if !allowedContentTypes[img.ContentType] {
		return "", fmt.Errorf("uploads: %w (got %q)", auctionerrors.ErrUnsupportedImage, img.ContentType)
	}

	key := utils.GenerateID() + guessExtension(img.Filename, img.ContentType)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("uploads: %w: create directory: %v", auctionerrors.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("uploads: %w: create temp file: %v", auctionerrors.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(img.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("uploads: %w: write image: %v", auctionerrors.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("uploads: %w: close image: %v", auctionerrors.ErrStorage, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("uploads: %w: rename image: %v", auctionerrors.ErrStorage, err)
	}

	return key, nil
}

// DeleteIfExists removes the stored file for key, logging and swallowing any
// failure so primary operations are never failed by cleanup.
func (s *DiskStore) DeleteIfExists(key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(key))); err != nil && !os.IsNotExist(err) {
		utils.Warn("uploads: failed to delete image", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Dir returns the backing directory, used by the router to serve /uploads.
func (s *DiskStore) Dir() string {
	return s.dir
}

// guessExtension derives the stored extension from the original filename
// suffix, falling back to the declared content type.
func guessExtension(originalFilename, contentType string) string {
	lower := strings.ToLower(originalFilename)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return ".jpg"
	case strings.HasSuffix(lower, ".png"):
		return ".png"
	}
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
