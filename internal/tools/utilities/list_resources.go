package utilities

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// DefaultMaxItems caps list_temp_resources when max_items is not given.
const DefaultMaxItems = 100

var contentTypes = []string{"application/pdf", "image/png", "image/jpeg", "application/octet-stream"}

// Resource is one list_temp_resources entry
type Resource struct {
	filemanager.ResourceInfo
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	Directory string `json:"directory"`
}

// ListTempResourcesTool lists files in the managed temp directory
type ListTempResourcesTool struct {
	store *filemanager.Store
}

// NewListTempResourcesTool creates the list_temp_resources tool
func NewListTempResourcesTool(store *filemanager.Store) *ListTempResourcesTool {
	return &ListTempResourcesTool{store: store}
}

// Definition returns the tool's definition for MCP registration
func (t *ListTempResourcesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"list_temp_resources",
		mcp.WithDescription("List files in temporary storage, newest first. Files older than 24 hours are removed before listing."),
		mcp.WithString("content_type",
			mcp.Description("Only list files of this type"),
			mcp.Enum(contentTypes...),
		),
		mcp.WithNumber("max_items",
			mcp.Description("Maximum number of entries to return"),
			mcp.DefaultNumber(DefaultMaxItems),
			mcp.Min(1),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute expires old files, then lists the rest
func (t *ListTempResourcesTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	contentType := strings.ToLower(tools.OptionalString(args, "content_type", ""))
	if contentType != "" && !slices.Contains(contentTypes, contentType) {
		return nil, fmt.Errorf("%w: content_type must be one of %s, got %q", errs.ErrValidation, strings.Join(contentTypes, ", "), contentType)
	}
	maxItems, err := tools.OptionalInt(args, "max_items", DefaultMaxItems)
	if err != nil {
		return nil, err
	}
	if maxItems <= 0 {
		return nil, fmt.Errorf("%w: max_items must be positive, got %d", errs.ErrValidation, maxItems)
	}

	removed, err := t.store.Cleanup(time.Time{})
	if err != nil {
		logger.WithError(err).Warn("Cleanup before listing failed")
	} else if removed > 0 {
		logger.WithField("removed", removed).Info("Expired temp files removed")
	}

	resources, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("list_temp_resources failed: %w", err)
	}

	results := make([]Resource, 0, min(len(resources), maxItems))
	for _, r := range resources {
		if contentType != "" && r.ContentType != contentType {
			continue
		}
		results = append(results, Resource{
			ResourceInfo: r,
			Filename:     filepath.Base(r.Path),
			Extension:    strings.ToLower(filepath.Ext(r.Path)),
			Directory:    filepath.Dir(r.Path),
		})
		if len(results) == maxItems {
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"count":        len(results),
		"content_type": contentType,
	}).Debug("Listed temp resources")

	return results, nil
}
