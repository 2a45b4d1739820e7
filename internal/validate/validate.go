package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/sammcj/mcp-pdftools/internal/errs"
)

var (
	PDFExtensions   = []string{".pdf"}
	ImageExtensions = []string{".png", ".jpg", ".jpeg"}
)

// FileExists checks the path names an existing regular file and returns it made absolute.
func FileExists(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: file not found: %s", errs.ErrNotFound, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return abs, nil
}

// Extension checks the lower-cased extension of path is one of allowed.
func Extension(path string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(allowed, ext) {
		return nil
	}
	sorted := slices.Clone(allowed)
	sort.Strings(sorted)
	return fmt.Errorf("%w: invalid file extension %q, allowed: %v", errs.ErrValidation, ext, sorted)
}

// MaxSize checks the file at path is no larger than maxBytes.
func MaxSize(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxBytes {
		return fmt.Errorf("%w: file size %d exceeds limit %d bytes", errs.ErrValidation, info.Size(), maxBytes)
	}
	return nil
}

// PDF runs the existence, extension and size checks for a PDF and returns its absolute path.
func PDF(path string, maxBytes int64) (string, error) {
	return check(path, PDFExtensions, maxBytes)
}

// Image runs the existence, extension and size checks for an image and returns its absolute path.
func Image(path string, maxBytes int64) (string, error) {
	return check(path, ImageExtensions, maxBytes)
}

func check(path string, allowed []string, maxBytes int64) (string, error) {
	abs, err := FileExists(path)
	if err != nil {
		return "", err
	}
	if err := Extension(abs, allowed); err != nil {
		return "", err
	}
	if err := MaxSize(abs, maxBytes); err != nil {
		return "", err
	}
	return abs, nil
}
