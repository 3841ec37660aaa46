package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ============================================================
// File Storage
// ============================================================

// AllowedExtensions lists the upload types the store accepts.
var AllowedExtensions = []string{".xml", ".stl", ".urdf"}

type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) Root() string {
	return s.root
}

func (s *FileStorage) Path(filename string) string {
	return filepath.Join(s.root, filename)
}

// StoredName prefixes the base name with the upload time in unix millis.
func StoredName(original string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), filepath.Base(original))
}

// Allowed reports whether the extension of name is an accepted upload type.
func Allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

func (s *FileStorage) Save(filename string, data []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("mkdir upload dir: %w", err)
	}
	if err := os.WriteFile(s.Path(filename), data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *FileStorage) Read(filename string) ([]byte, error) {
	return os.ReadFile(s.Path(filename))
}

// Remove deletes the stored file; a missing file is not an error.
func (s *FileStorage) Remove(filename string) error {
	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
