package uploads

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// UploadBase64Tool stores base64 encoded content
type UploadBase64Tool struct {
	store *filemanager.Store
}

// NewUploadBase64Tool creates the upload_file_base64 tool
func NewUploadBase64Tool(store *filemanager.Store) *UploadBase64Tool {
	return &UploadBase64Tool{store: store}
}

// Definition returns the tool's definition for MCP registration
func (t *UploadBase64Tool) Definition() mcp.Tool {
	return mcp.NewTool(
		"upload_file_base64",
		mcp.WithDescription("Upload a base64 encoded file into temp storage under the given filename."),
		mcp.WithString("base64",
			mcp.Required(),
			mcp.Description("Standard base64 file content"),
		),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Name for the stored file, e.g. document.pdf"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute decodes and stores the content
func (t *UploadBase64Tool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	data, err := tools.RequiredString(args, "base64")
	if err != nil {
		return nil, fmt.Errorf("upload_file_base64 failed: %w", err)
	}
	filename, err := tools.RequiredString(args, "filename")
	if err != nil {
		return nil, fmt.Errorf("upload_file_base64 failed: %w", err)
	}

	path, err := t.store.Resolve(ctx, filemanager.Base64Input{Data: data, Filename: filename}, filename)
	if err != nil {
		return nil, fmt.Errorf("upload_file_base64 failed filename=%s: %w", filename, err)
	}
	upload, err := describe(path)
	if err != nil {
		return nil, fmt.Errorf("upload_file_base64 failed filename=%s: %w", filename, err)
	}

	logger.WithFields(logrus.Fields{
		"path": upload.Path,
		"size": upload.Size,
	}).Info("Stored base64 upload")

	return upload, nil
}

// UploadURLTool downloads a remote file into temp storage
type UploadURLTool struct {
	store *filemanager.Store
}

// NewUploadURLTool creates the upload_file_url tool
func NewUploadURLTool(store *filemanager.Store) *UploadURLTool {
	return &UploadURLTool{store: store}
}

// Definition returns the tool's definition for MCP registration
func (t *UploadURLTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"upload_file_url",
		mcp.WithDescription("Download a file over HTTP(S) into temp storage. Downloads time out after 15 seconds."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Direct http or https URL of the file"),
		),
		mcp.WithString("filename",
			mcp.Description("Name for the stored file (default: taken from the URL path)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute fetches url and stores the body
func (t *UploadURLTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	rawURL, err := tools.RequiredString(args, "url")
	if err != nil {
		return nil, fmt.Errorf("upload_file_url failed: %w", err)
	}
	filename := tools.OptionalString(args, "filename", "")
	safeURL := telemetry.SanitiseURL(rawURL)

	path, err := t.store.Resolve(ctx, filemanager.URLInput{URL: rawURL, Filename: filename}, "")
	if err != nil {
		return nil, fmt.Errorf("upload_file_url failed url=%s: %w", safeURL, err)
	}
	upload, err := describe(path)
	if err != nil {
		return nil, fmt.Errorf("upload_file_url failed url=%s: %w", safeURL, err)
	}

	logger.WithFields(logrus.Fields{
		"url":  safeURL,
		"path": upload.Path,
		"size": upload.Size,
	}).Info("Stored download")

	return upload, nil
}
