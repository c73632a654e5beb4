package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrInvalidName is returned for names that are empty or would escape the base directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned by SaveStream when the reader exceeds the limit.
	ErrTooLarge = errors.New("file too large")
)

// StoredFile describes a file found under a LocalStorage directory.
type StoredFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// LocalStorage persists flat files under a single base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies at most limit bytes from r into name and returns the number written.
// When the reader holds more than limit bytes the partial file is removed and an error returned.
func (s *LocalStorage) SaveStream(name string, r io.Reader, limit int64) (int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", name, err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", name, copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return 0, fmt.Errorf("close %s: %w", name, closeErr)
	case limit > 0 && written > limit:
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, limit)
	}
	return written, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// MoveTo relocates name from this storage into dest, keeping the name.
// Rename is tried first; a copy is used when the directories sit on different devices.
func (s *LocalStorage) MoveTo(name string, dest *LocalStorage) error {
	from, err := s.resolve(name)
	if err != nil {
		return err
	}
	to, err := dest.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err == nil {
		return nil
	}

	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open %s for move: %w", name, err)
	}
	defer src.Close() //nolint:errcheck
	if _, err := dest.SaveStream(name, src, 0); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	if err := os.Remove(from); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove moved %s: %w", name, err)
	}
	return nil
}

// ListOlderThan returns regular files last modified before now minus ttl.
func (s *LocalStorage) ListOlderThan(ttl time.Duration) ([]StoredFile, error) {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.baseDir, err)
	}
	files := make([]StoredFile, 0)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		files = append(files, StoredFile{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return files, nil
}

func (s *LocalStorage) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.baseDir, name), nil
}
