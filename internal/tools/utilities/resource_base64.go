package utilities

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ResourceContent is a temp file returned inline
type ResourceContent struct {
	Path   string `json:"path"`
	Base64 string `json:"base64"`
}

// ResourceBase64Tool returns the content of a temp file as base64
type ResourceBase64Tool struct {
	store *filemanager.Store
}

// NewResourceBase64Tool creates the get_resource_base64 tool
func NewResourceBase64Tool(store *filemanager.Store) *ResourceBase64Tool {
	return &ResourceBase64Tool{store: store}
}

// Definition returns the tool's definition for MCP registration
func (t *ResourceBase64Tool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_resource_base64",
		mcp.WithDescription("Return the base64-encoded content of a file. Only files inside the server's temporary storage can be read."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path of a file inside temporary storage, absolute or relative to it"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute checks containment and encodes the file
func (t *ResourceBase64Tool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	filePath, err := tools.RequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}

	encoded, resolved, err := t.store.ReadBase64(filePath)
	if err != nil {
		return nil, fmt.Errorf("get_resource_base64 failed file=%s: %w", filePath, err)
	}

	logger.WithField("path", resolved).Debug("Encoded resource")
	return ResourceContent{Path: resolved, Base64: encoded}, nil
}
