// Package safe holds file helpers that log cleanup failures instead of dropping them.
package safe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultMaxFileSize bounds ReadFile (8MB). Source files and snapshots are far smaller.
const DefaultMaxFileSize = 8 << 20

// ReadFile reads a regular file of at most maxSize bytes. Zero means DefaultMaxFileSize.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path %q is not a regular file", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum allowed size of %d bytes", path, maxSize)
	}

	return os.ReadFile(cleanPath)
}

// WriteFileAtomic replaces path with data. Readers see either the old or the new
// content, never a partial write.
func WriteFileAtomic(path string, data []byte, logger zerolog.Logger) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer RemoveFile(tmpFile, logger)

	if _, err := tmpFile.Write(data); err != nil {
		Close(tmpFile, logger, "failed to close temp file")
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		Close(tmpFile, logger, "failed to close temp file")
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions of temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}

// Close closes gracefully a Closer interface, handling and logging the error.
func Close(c io.Closer, logger zerolog.Logger, msg string) {
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// RemoveFile removes gracefully a file, handling and logging the error.
// A file that is already gone is not an error.
func RemoveFile(f *os.File, logger zerolog.Logger) {
	if f == nil {
		return
	}
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to remove file")
	}
}
