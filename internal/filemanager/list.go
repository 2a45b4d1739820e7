package filemanager

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ResourceInfo describes one stored file.
type ResourceInfo struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	ContentType string    `json:"content_type"`
}

// ContentType infers a MIME type from the file extension.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// List returns every visible regular file under the temp directory, newest first.
func (s *Store) List() ([]ResourceInfo, error) {
	var resources []ResourceInfo

	err := s.walkFiles(func(path string, info fs.FileInfo) error {
		resources = append(resources, ResourceInfo{
			Path:        path,
			Size:        info.Size(),
			Created:     info.ModTime(),
			ContentType: ContentType(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}

	sort.SliceStable(resources, func(i, j int) bool {
		return resources[i].Created.After(resources[j].Created)
	})
	return resources, nil
}

// walkFiles calls fn for each visible regular file, tolerating files that vanish mid-walk.
func (s *Store) walkFiles(fn func(path string, info fs.FileInfo) error) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != s.root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return fn(path, info)
	})
}
