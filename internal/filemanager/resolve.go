package filemanager

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/validate"
	"github.com/sirupsen/logrus"
)

// maxSuggestions caps the "did you mean" candidates in a not-found error.
const maxSuggestions = 3

// Resolve turns in into the absolute path of an existing file, writing it into the temp
// directory first when it is not already on disk. hint names written files when the input
// carries no name of its own.
func (s *Store) Resolve(ctx context.Context, in Input, hint string) (string, error) {
	switch v := in.(type) {
	case PathInput:
		return s.resolvePath(string(v))

	case BytesInput:
		return s.WriteUnique(firstNonEmpty(hint, DefaultUploadName), v)

	case Base64Input:
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(v.Data))
		if err != nil {
			return "", fmt.Errorf("%w: invalid base64 content: %v", errs.ErrDecode, err)
		}
		return s.WriteUnique(firstNonEmpty(v.Filename, hint, DefaultUploadName), data)

	case URLInput:
		data, derived, err := s.fetch(ctx, v.URL)
		if err != nil {
			return "", err
		}
		return s.WriteUnique(firstNonEmpty(v.Filename, hint, derived, DefaultDownloadName), data)

	case ReaderInput:
		if v.Reader == nil {
			return "", unsupported()
		}
		data, err := io.ReadAll(io.LimitReader(v.Reader, s.maxBytes+1))
		if err != nil {
			return "", fmt.Errorf("failed to read input stream: %w", err)
		}
		if int64(len(data)) > s.maxBytes {
			return "", fmt.Errorf("%w: input exceeds limit %d bytes", errs.ErrValidation, s.maxBytes)
		}
		return s.WriteUnique(firstNonEmpty(hint, v.Name, DefaultUploadName), data)

	case ContentInput:
		if v.Data == nil {
			return "", unsupported()
		}
		return s.WriteUnique(firstNonEmpty(hint, v.Name, DefaultUploadName), v.Data)

	default:
		return "", unsupported()
	}
}

// ResolveRaw decodes a raw tool argument with DecodeInput and resolves it.
func (s *Store) ResolveRaw(ctx context.Context, raw any, hint string) (string, error) {
	in, err := DecodeInput(raw)
	if err != nil {
		return "", err
	}
	return s.Resolve(ctx, in, hint)
}

// ResolvePaths resolves each path or temp filename to an existing file, in order.
func (s *Store) ResolvePaths(ctx context.Context, paths []string) ([]string, error) {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		r, err := s.Resolve(ctx, PathInput(p), "")
		if err != nil {
			return nil, err
		}
		resolved[i] = r
	}
	return resolved, nil
}

// resolvePath accepts an existing file path as is, otherwise looks the value up as a file
// name in the temp directory, picking the most recently modified match.
func (s *Store) resolvePath(value string) (string, error) {
	if value != "" {
		if abs, err := validate.FileExists(value); err == nil {
			return abs, nil
		}
	}

	var (
		best     string
		bestInfo fs.FileInfo
		names    []string
		seen     = make(map[string]bool)
	)
	err := s.walkFiles(func(path string, info fs.FileInfo) error {
		name := filepath.Base(path)
		if name == value && (bestInfo == nil || info.ModTime().After(bestInfo.ModTime())) {
			best, bestInfo = path, info
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search temp directory %s: %w", s.root, err)
	}

	if best != "" {
		s.logger.WithFields(logrus.Fields{
			"name": value,
			"path": best,
		}).Debug("Resolved file name from temp directory")
		return best, nil
	}

	return "", fmt.Errorf("%w: file %q not found as a path or in temp directory %s; attach the file or provide a full path%s",
		errs.ErrNotFound, value, s.root, suggest(value, names))
}

func suggest(value string, names []string) string {
	if value == "" || len(names) == 0 {
		return ""
	}
	matches := fuzzy.Find(value, names)
	if len(matches) == 0 {
		return ""
	}
	var b bytes.Buffer
	b.WriteString(" (did you mean: ")
	for i, m := range matches {
		if i == maxSuggestions {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(m.Str)
	}
	b.WriteString("?)")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
