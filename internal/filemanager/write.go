package filemanager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WriteUnique writes data to the temp directory under name. When name is taken a short random
// hex suffix is inserted before the extension. Only the base name of name is used.
func (s *Store) WriteUnique(name string, data []byte) (string, error) {
	target := s.uniquePath(sanitiseName(name, DefaultUploadName))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}

	s.logger.WithFields(logrus.Fields{
		"path": target,
		"size": len(data),
	}).Debug("Wrote temp file")

	return target, nil
}

// uniquePath returns root/name, or root/<stem>-<6 hex><ext> when root/name already exists.
func (s *Store) uniquePath(name string) string {
	candidate := filepath.Join(s.root, name)
	if _, err := os.Lstat(candidate); os.IsNotExist(err) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return filepath.Join(s.root, stem+"-"+uniqueSuffix()+ext)
}

func uniqueSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// sanitiseName reduces name to a plain, visible file name, falling back to fallback.
func sanitiseName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	base = strings.TrimLeft(base, ".")
	if base == "" || base == "/" {
		return fallback
	}
	return base
}
