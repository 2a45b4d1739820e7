// Package filemanager owns the managed temp directory: it resolves tool inputs to files on disk,
// writes uploads and outputs under unique names, lists and expires what it stores, and enforces
// that read-back paths stay inside the directory.
package filemanager

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sammcj/mcp-pdftools/internal/utils/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// RetentionWindow is how long an unmodified temp file is kept.
	RetentionWindow = 24 * time.Hour
	// FetchTimeout bounds a remote URL download. It is fixed and never retried.
	FetchTimeout = 15 * time.Second

	DefaultUploadName   = "upload.bin"
	DefaultDownloadName = "download.bin"

	// DefaultFetchRate is the sustained number of URL downloads allowed per second.
	DefaultFetchRate = 2

	cleanupLockName = ".cleanup.lock"
)

// Store is the managed temp directory. It is safe for concurrent use.
type Store struct {
	root     string
	maxBytes int64
	client   *http.Client
	limiter  *rate.Limiter
	logger   *logrus.Logger

	clientSet bool
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient replaces the client used for URL inputs. A nil client disables URL inputs.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
		s.clientSet = true
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the temp directory named by settings if needed and returns a Store rooted there.
func New(settings config.Settings, opts ...Option) (*Store, error) {
	root := settings.TempPath()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory %s: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		root:     root,
		maxBytes: settings.MaxFileSizeBytes(),
		limiter:  rate.NewLimiter(rate.Limit(DefaultFetchRate), 1),
		logger:   discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.clientSet {
		s.client = httpclient.New(FetchTimeout, s.logger)
	}

	return s, nil
}

// Root returns the absolute temp directory path.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) lock() *flock.Flock {
	return flock.New(filepath.Join(s.root, cleanupLockName))
}

// isHidden reports whether a directory entry name is internal bookkeeping (the lock file,
// editor droppings) that is never listed, resolved or expired.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
