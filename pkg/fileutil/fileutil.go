package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anvik-1/spacetime-crawler/pkg/failure"
)

// GetFileExtension extracts the last dot-segment extension from a path,
// or empty string if none.
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir checks if a given directory plus the following path exists, then creates one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// AppendLine appends a single line plus newline to the file at path,
// creating it if missing. Used by the append-only processing log.
func AppendLine(path string, line []byte) failure.ClassifiedError {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: true,
			Cause:     ErrCauseWriteError,
		}
	}
	return nil
}
