package utilities

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// PDFInfoTool summarises a PDF without extracting its content
type PDFInfoTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewPDFInfoTool creates the get_pdf_info tool
func NewPDFInfoTool(store *filemanager.Store, processor *pdfops.Processor) *PDFInfoTool {
	return &PDFInfoTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *PDFInfoTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_pdf_info",
		mcp.WithDescription("Get page count, file size, PDF version and encryption status of a PDF without processing its content."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the PDF, or the filename of a PDF in temporary storage"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute reads the PDF summary
func (t *PDFInfoTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	filePath, err := tools.RequiredString(args, "file_path")
	if err != nil {
		return nil, err
	}

	resolved, err := t.store.Resolve(ctx, filemanager.PathInput(filePath), "")
	if err != nil {
		return nil, fmt.Errorf("get_pdf_info failed file=%s: %w", filePath, err)
	}

	info, err := t.processor.Info(resolved)
	if err != nil {
		return nil, fmt.Errorf("get_pdf_info failed file=%s: %w", filePath, err)
	}

	logger.WithFields(logrus.Fields{
		"path":  info.Path,
		"pages": info.Pages,
	}).Debug("Read PDF info")

	return info, nil
}
