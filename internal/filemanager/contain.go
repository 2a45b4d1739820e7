package filemanager

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/validate"
)

// EnsureWithin resolves path to an absolute path, following symlinks for the part that exists,
// and returns it when it lies strictly inside the temp directory. The root itself is rejected.
func (s *Store) EnsureWithin(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	resolved := evalExisting(abs)

	rel, err := filepath.Rel(s.root, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path is outside the temp directory: %s", errs.ErrAccessDenied, path)
	}
	return resolved, nil
}

// evalExisting evaluates symlinks on the longest existing prefix of an absolute, clean path and
// re-attaches the remainder.
func evalExisting(abs string) string {
	existing := abs
	var rest []string
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}

// ReadBase64 returns the standard base64 encoding of a file inside the temp directory together
// with its resolved path. A relative path is taken relative to the temp directory.
func (s *Store) ReadBase64(path string) (string, string, error) {
	target, err := s.placed(path)
	if err != nil {
		return "", "", err
	}
	if _, err := validate.FileExists(target); err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", target, err)
	}
	return base64.StdEncoding.EncodeToString(data), target, nil
}

// OutputPath places a file the system is about to write. An empty path yields a fresh unique
// name derived from defaultName in the temp directory; a relative path is taken relative to the
// temp directory; an absolute path must already lie inside it. Parent directories are created.
func (s *Store) OutputPath(path, defaultName string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return s.uniquePath(sanitiseName(defaultName, DefaultUploadName)), nil
	}

	target, err := s.placed(path)
	if err != nil {
		return "", err
	}
	if target, err = s.visible(target, sanitiseName(defaultName, DefaultUploadName)); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	return target, nil
}

// OutputDir is OutputPath for a directory, which is created. An empty dir yields a fresh
// directory named after defaultName.
func (s *Store) OutputDir(dir, defaultName string) (string, error) {
	var (
		target string
		err    error
	)
	if strings.TrimSpace(dir) == "" {
		target = s.uniquePath(sanitiseName(defaultName, "output"))
	} else if target, err = s.placed(dir); err != nil {
		return "", err
	} else if target, err = s.visible(target, sanitiseName(defaultName, "output")); err != nil {
		return "", err
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", target, err)
	}
	return target, nil
}

// visible strips leading dots from every component of target below the root, so listing and
// retention cleanup, which skip hidden entries, still see what gets written there. A final
// component left empty becomes fallback.
func (s *Store) visible(target, fallback string) (string, error) {
	rel, err := filepath.Rel(s.root, target)
	if err != nil {
		return "", fmt.Errorf("%w: path is outside the temp directory: %s", errs.ErrAccessDenied, target)
	}

	parts := strings.Split(rel, string(filepath.Separator))
	kept := make([]string, 0, len(parts)+1)
	kept = append(kept, s.root)
	for i, part := range parts {
		part = strings.TrimLeft(part, ".")
		if part == "" {
			if i < len(parts)-1 {
				continue
			}
			part = fallback
		}
		kept = append(kept, part)
	}

	cleaned := filepath.Join(kept...)
	if cleaned == target {
		return target, nil
	}
	return s.EnsureWithin(cleaned)
}

func (s *Store) placed(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	return s.EnsureWithin(path)
}
