// Package image provides utilities for loading and processing images.
package image

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format
)

// ErrDecode is returned when a file cannot be read or decoded as an image.
var ErrDecode = errors.New("image decode failure")

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from a filesystem.
type FileLoader struct {
	fs afero.Fs
}

// NewFileLoader creates a FileLoader reading from the OS filesystem.
func NewFileLoader() *FileLoader {
	return NewFileLoaderFs(afero.NewOsFs())
}

// NewFileLoaderFs creates a FileLoader reading from fs.
func NewFileLoaderFs(fs afero.Fs) *FileLoader {
	return &FileLoader{fs: fs}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, BMP.
// Every failure wraps ErrDecode.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: image path cannot be empty", ErrDecode)
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: image file not found: %s", ErrDecode, path)
		}
		return nil, fmt.Errorf("%w: failed to stat image file: %w", ErrDecode, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: path is a directory, not a file: %s", ErrDecode, path)
	}

	file, err := l.fs.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image file: %w", ErrDecode, err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode decodes an image from r using the registered formats.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image (format: %s): %w", ErrDecode, format, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	return img, nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory on the OS filesystem. See
// FileLoader.Scan.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	return NewFileLoader().Scan(dirPath)
}

// Scan returns the supported image files in dirPath in lexical order. It does
// not recurse into subdirectories, but follows symlinks.
func (l *FileLoader) Scan(dirPath string) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// Stat the target so symlinked files count.
		info, err := l.fs.Stat(fullPath)
		if err != nil || info.IsDir() {
			continue
		}
		if IsImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}
	return imageFiles, nil
}

// ExpandPaths expands paths on the OS filesystem. See FileLoader.Expand.
func ExpandPaths(paths []string) ([]string, error) {
	return NewFileLoader().Expand(paths)
}

// Expand turns a mix of files and directories into a flat list of image
// files. Directories are scanned one level deep.
func (l *FileLoader) Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := l.fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := l.Scan(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// SelectRandomImage selects a random image from a list of image paths.
func SelectRandomImage(imagePaths []string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("image path list is empty")
	}

	maxIndex := big.NewInt(int64(len(imagePaths)))
	randomIndex, err := rand.Int(rand.Reader, maxIndex)
	if err != nil {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		index := int(binary.LittleEndian.Uint64(buf[:]) % uint64(len(imagePaths)))
		return imagePaths[index], nil
	}

	return imagePaths[randomIndex.Int64()], nil
}

// ResolveImagePath resolves a path on the OS filesystem. See
// FileLoader.Resolve.
func ResolveImagePath(path string) (string, error) {
	return NewFileLoader().Resolve(path)
}

// Resolve returns path if it is a file. If it is a directory, a random image
// from it is returned.
func (l *FileLoader) Resolve(path string) (string, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	imageFiles, err := l.Scan(path)
	if err != nil {
		return "", err
	}
	return SelectRandomImage(imageFiles)
}
