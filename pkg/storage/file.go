package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage reads assets from a directory on the local filesystem
type FileStorage struct {
	base string
}

// NewFileStorage creates a filesystem store rooted at base. The base is made
// absolute so that reported locations do not depend on the working directory.
func NewFileStorage(base string) (*FileStorage, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to make %q absolute: %w", base, err)
	}
	return &FileStorage{base: abs}, nil
}

// Base returns the absolute root directory
func (s *FileStorage) Base() string {
	return s.base
}

// Location returns the joined path of base and key
func (s *FileStorage) Location(key string) string {
	return filepath.Join(s.base, key)
}

// Get reads the whole file stored under key
func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Location(key)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ErrNotFound{Key: key, Location: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// List returns the names of the regular files directly under base.
// Symlinks are followed only when they point at a regular file.
func (s *FileStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ErrNotFound{Location: s.base}
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.base, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(filepath.Join(s.base, e.Name()))
			if err != nil || !target.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}

// Put writes content under key, creating the base directory when needed
func (s *FileStorage) Put(ctx context.Context, key string, content io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if err := os.MkdirAll(s.base, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.base, err)
	}
	if err := os.WriteFile(s.Location(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping checks that base exists and is a directory
func (s *FileStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ErrNotFound{Location: s.base}
		}
		return fmt.Errorf("failed to stat %s: %w", s.base, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.base)
	}
	return nil
}

// Backend returns "file"
func (s *FileStorage) Backend() string {
	return "file"
}
