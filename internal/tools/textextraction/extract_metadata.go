package textextraction

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ExtractMetadataTool reads document properties
type ExtractMetadataTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewExtractMetadataTool creates the extract_metadata tool
func NewExtractMetadataTool(store *filemanager.Store, processor *pdfops.Processor) *ExtractMetadataTool {
	return &ExtractMetadataTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *ExtractMetadataTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"extract_metadata",
		mcp.WithDescription("Extract PDF metadata: title, author, creator, producer, dates, page count, encryption, PDF version and file size."),
		tools.WithFileInput("file", mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute resolves the input and reads its metadata
func (t *ExtractMetadataTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	resolved, err := resolveFile(ctx, t.store, args)
	if err != nil {
		return nil, fmt.Errorf("extract_metadata failed: %w", err)
	}

	metadata, err := t.processor.ExtractMetadata(resolved)
	if err != nil {
		return nil, fmt.Errorf("extract_metadata failed: %w", err)
	}

	logger.WithField("path", resolved).Debug("Extracted metadata")
	return tools.Resolved{Result: metadata, Path: resolved}, nil
}
