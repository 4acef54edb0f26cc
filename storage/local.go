package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage interface for local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}

	// Create base directory if it doesn't exist
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: abs,
	}, nil
}

// Put stores data at basePath/key
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte) (Location, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if !s.contains(fullPath) {
		return "", fmt.Errorf("%w: key %q escapes storage directory", ErrInvalidLocation, key)
	}

	// Create directory structure
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory: %v", ErrUnavailable, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create file: %v", ErrUnavailable, err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(fullPath) // Clean up on error
		return "", fmt.Errorf("%w: failed to write file: %v", ErrUnavailable, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: failed to close file: %v", ErrUnavailable, err)
	}

	return Location(fullPath), nil
}

// Get opens a stored file
func (s *LocalStorage) Get(ctx context.Context, loc Location) (io.ReadCloser, error) {
	fullPath, err := s.resolve(loc)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("%w: failed to open file: %v", ErrUnavailable, err)
	}

	return file, nil
}

// Delete removes a stored file
func (s *LocalStorage) Delete(ctx context.Context, loc Location) error {
	fullPath, err := s.resolve(loc)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete file: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *LocalStorage) resolve(loc Location) (string, error) {
	if scheme := loc.Scheme(); scheme != "" {
		return "", fmt.Errorf("%w: local storage cannot resolve %s locations", ErrUnavailable, scheme)
	}
	fullPath := filepath.Clean(string(loc))
	if !s.contains(fullPath) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrInvalidLocation, loc, s.basePath)
	}
	return fullPath, nil
}

// contains reports whether path is strictly inside the base directory
func (s *LocalStorage) contains(path string) bool {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
