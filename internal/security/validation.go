// Package security provides path and input validation for files prism reads
// from untrusted sources such as imported cache archives.
package security

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrSizeLimit is returned by LimitedReader once its budget is spent.
var ErrSizeLimit = errors.New("decompression size limit exceeded")

// ValidateName checks that name is usable as a single path component: no
// separators, no traversal, no hidden files.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name %q contains a path separator", name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name %q must not start with a dot", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name %q contains a NUL byte", name)
	}
	return nil
}

// ValidateArchivePath validates a slash-separated path inside an archive to
// prevent directory traversal.
func ValidateArchivePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty file path")
	}
	if strings.Contains(p, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}
	if path.IsAbs(p) || filepath.IsAbs(p) || strings.Contains(p, `\`) {
		return fmt.Errorf("absolute paths in archives are not allowed")
	}
	if path.Clean(p) != p {
		return fmt.Errorf("file path %q is not canonical", p)
	}
	return nil
}

// ValidateFilePath validates that joining filePath onto baseDir stays inside baseDir.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}
	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}
	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute paths are not allowed")
	}

	cleanFinal := filepath.Clean(filepath.Join(baseDir, filePath))
	cleanBase := filepath.Clean(baseDir)
	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}
	return nil
}

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// This prevents decompression bomb attacks when extracting archives.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
