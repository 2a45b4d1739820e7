package filemanager

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// fetch downloads rawURL within FetchTimeout and returns the body and a file name derived from
// the URL path. The body is capped at the size ceiling.
func (s *Store) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if s.client == nil {
		return nil, "", fmt.Errorf("%w: URL inputs need an HTTP client; provide the file as bytes, base64 or a full path instead",
			errs.ErrDependencyMissing)
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: invalid url %q: only http and https are supported", errs.ErrValidation, telemetry.SanitiseURL(rawURL))
	}

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("%w: failed to download url=%s: %v", errs.ErrExternal, telemetry.SanitiseURL(rawURL), err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	logger := s.logger.WithFields(logrus.Fields{"url": telemetry.SanitiseURL(rawURL)})
	logger.Debug("Fetching remote file")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to download url=%s: %v", errs.ErrExternal, telemetry.SanitiseURL(rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: failed to download url=%s: HTTP %d", errs.ErrExternal, telemetry.SanitiseURL(rawURL), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read body of url=%s: %v", errs.ErrExternal, telemetry.SanitiseURL(rawURL), err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", fmt.Errorf("%w: download exceeds limit %d bytes", errs.ErrValidation, s.maxBytes)
	}

	logger.WithField("size", len(data)).Debug("Fetched remote file")
	return data, urlFileName(u), nil
}

func urlFileName(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
