// Package fsx writes request content to the local filesystem.
//
// Failures are returned as *SaveError values whose Error() text is the
// exact message reported to the browser.
package fsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for save failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInvalidPath indicates a path that is not absolute.
	ErrInvalidPath = errors.New("invalid path")

	// ErrDirectoryCreation indicates the parent directory chain could not be created.
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrWrite indicates the file itself could not be written.
	ErrWrite = errors.New("write failed")
)

// Default permission bits for created directories and files.
const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644
)

// SaveError wraps a platform error with its save classification.
type SaveError struct {
	// Kind is the sentinel error for classification (e.g., ErrWrite).
	Kind error
	// Path is the requested target path.
	Path string
	// Err is the underlying platform error, nil for ErrInvalidPath.
	Err error
}

// Error returns the browser-facing failure message.
func (e *SaveError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidPath):
		return "Path must be absolute"
	case errors.Is(e.Kind, ErrDirectoryCreation):
		return fmt.Sprintf("Failed to create directories: %v", e.Err)
	case errors.Is(e.Kind, ErrWrite):
		return fmt.Sprintf("Failed to write file: %v", e.Err)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *SaveError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *SaveError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Writer saves content to absolute paths.
// No traversal, symlink or overwrite checks are made: the caller is trusted
// to write anywhere the process can.
type Writer struct {
	dirMode  os.FileMode
	fileMode os.FileMode
}

// NewWriter creates a Writer using the default permission bits.
func NewWriter() *Writer {
	return &Writer{
		dirMode:  DefaultDirMode,
		fileMode: DefaultFileMode,
	}
}

// Save writes content as the full contents of path, creating missing parent
// directories first. Returns the saved path on success.
//
// Not transactional: directories created before a failed write are left
// in place.
func (w *Writer) Save(path string, content []byte) (string, error) {
	if !filepath.IsAbs(path) {
		return "", &SaveError{Kind: ErrInvalidPath, Path: path}
	}

	parent := filepath.Dir(path)
	if _, err := os.Stat(parent); err != nil {
		if err := os.MkdirAll(parent, w.dirMode); err != nil {
			return "", &SaveError{Kind: ErrDirectoryCreation, Path: path, Err: err}
		}
	}

	if err := os.WriteFile(path, content, w.fileMode); err != nil {
		return "", &SaveError{Kind: ErrWrite, Path: path, Err: err}
	}

	return path, nil
}
