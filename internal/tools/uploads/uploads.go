// Package uploads exposes tools that persist caller-supplied files into temp storage so later
// calls can refer to them by filename.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
)

// Upload describes a file written to (or found in) temp storage
type Upload struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	Directory string `json:"directory"`
	Size      int64  `json:"size"`
}

func describe(path string) (*Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &Upload{
		Path:      path,
		Filename:  filepath.Base(path),
		Directory: filepath.Dir(path),
		Size:      info.Size(),
	}, nil
}
