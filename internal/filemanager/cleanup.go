package filemanager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Cleanup removes regular files under the temp directory whose modification time is more than
// RetentionWindow before now, and returns how many it removed. A zero now means time.Now().
// When another process holds the cleanup lock the pass is skipped and 0 is returned.
func (s *Store) Cleanup(now time.Time) (int, error) {
	if now.IsZero() {
		now = time.Now()
	}

	fileLock := s.lock()
	locked, err := fileLock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("failed to acquire cleanup lock: %w", err)
	}
	if !locked {
		s.logger.Debug("Cleanup lock held by another process, skipping")
		return 0, nil
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.WithError(err).Warn("Failed to release cleanup lock")
		}
	}()

	removed := 0
	err = s.walkFiles(func(path string, info fs.FileInfo) error {
		if now.Sub(info.ModTime()) <= RetentionWindow {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove expired file %s: %w", path, err)
		}
		removed++
		return nil
	})

	s.logger.WithFields(logrus.Fields{
		"removed": removed,
		"root":    s.root,
	}).Debug("Temp cleanup finished")

	if err != nil {
		return removed, fmt.Errorf("cleanup of %s failed: %w", s.root, err)
	}
	return removed, nil
}
