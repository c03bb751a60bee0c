package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fixora/archive/application/port/outbound"
)

const logExtension = ".txt"

// FileLogStorage stores every log as a flat text file {dir}/{name}.txt
type FileLogStorage struct {
	dir string
}

// NewFileLogStorage creates a storage rooted at dir, creating dir when missing
func NewFileLogStorage(dir string) (*FileLogStorage, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileLogStorage{dir: dir}, nil
}

// Path returns the file backing the named log
func (s *FileLogStorage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid log name %q", name)
	}
	return filepath.Join(s.dir, name+logExtension), nil
}

func (s *FileLogStorage) Open(_ context.Context, name string) (outbound.LogHandle, bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, false, err
	}

	created := true
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		created = false
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file: %w", err)
	}

	return &fileHandle{path: path, file: f}, created, nil
}

func (s *FileLogStorage) ReadLines(_ context.Context, name string) ([]string, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, outbound.ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return []string{}, nil
	}
	return strings.Split(content, "\n"), nil
}

func (s *FileLogStorage) Exists(_ context.Context, name string) (bool, error) {
	path, err := s.Path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}
}

type fileHandle struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func (h *fileHandle) AppendLine(_ context.Context, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return outbound.ErrLogClosed
	}

	// an open descriptor keeps writing into an unlinked file, so check the path
	if err := h.checkLinked(); err != nil {
		return err
	}

	if _, err := h.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return nil
}

func (h *fileHandle) checkLinked() error {
	onDisk, err := os.Stat(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outbound.ErrLogRemoved
		}
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	open, err := h.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if !os.SameFile(onDisk, open) {
		return outbound.ErrLogRemoved
	}
	return nil
}

func (h *fileHandle) Delete(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file != nil {
		_ = h.file.Close()
		h.file = nil
	}
	if err := os.Remove(h.path); err != nil {
		return fmt.Errorf("failed to remove log file: %w", err)
	}
	return nil
}

func (h *fileHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}
