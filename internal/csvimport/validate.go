package csvimport

import (
	"fmt"
	"strings"
)

const (
	// MaxFileSize is the hard ceiling on uploaded CSV files.
	MaxFileSize = 10 * 1024 * 1024
	// MaxRows is the hard ceiling on data rows per file.
	MaxRows = 50000
)

// ValidateFile enforces the size and extension ceilings. It must run before
// the file content is parsed.
func ValidateFile(filename string, size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return ErrUnsupportedFormat
	}
	return nil
}

// ValidateRowCount counts non-blank lines minus the header and fails when the
// row ceiling is exceeded. It counts lines only; no semantic parsing happens
// here.
func ValidateRowCount(content string) error {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	count-- // header

	if count > MaxRows {
		return fmt.Errorf("%w: file contains %d rows, maximum allowed is %d", ErrTooManyRows, count, MaxRows)
	}
	return nil
}
