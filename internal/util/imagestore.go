package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Image type tags used in stored filenames.
const (
	ImageTypeProfile    = "profile"
	ImageTypeAdditional = "additional"
)

// ImageStore keeps uploaded images on disk, one directory per profile.
// Contract: given raw bytes, a profile id and a type tag, return a stable
// readable path or fail. The store never deletes on behalf of callers; the
// retention sweep reclaims orphans separately.
type ImageStore struct {
	baseDir string
}

func NewImageStore(baseDir string) (*ImageStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir}, nil
}

// SaveImage writes the bytes under {baseDir}/{profileID}/{type}_{uuid}{ext}.
func (s *ImageStore) SaveImage(data []byte, profileID, imageType, originalName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	dir := filepath.Join(s.baseDir, profileID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create profile image directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", imageType, uuid.New().String(), ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// BaseDir returns the root of the image tree.
func (s *ImageStore) BaseDir() string {
	return s.baseDir
}
