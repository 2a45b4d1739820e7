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

// ExtractTextByPageTool extracts the text of selected pages
type ExtractTextByPageTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewExtractTextByPageTool creates the extract_text_by_page tool
func NewExtractTextByPageTool(store *filemanager.Store, processor *pdfops.Processor) *ExtractTextByPageTool {
	return &ExtractTextByPageTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *ExtractTextByPageTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"extract_text_by_page",
		mcp.WithDescription("Extract text from specific pages or page ranges of a PDF. Returns one entry per page."),
		tools.WithFileInput("file", mcp.Required()),
		mcp.WithArray("pages",
			mcp.Description("Page numbers to extract (1-based); takes precedence over page_range"),
			mcp.Items(map[string]any{"type": "integer", "minimum": 1}),
		),
		mcp.WithString("page_range",
			mcp.Description("Page selection such as '1-3,5,7-9'"),
		),
		mcp.WithString("encoding",
			mcp.Description("Output text encoding; characters it cannot represent are replaced"),
			mcp.DefaultString(pdfops.DefaultEncoding),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute resolves the input and extracts the selected pages
func (t *ExtractTextByPageTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	pageList, err := tools.IntSlice(args, "pages")
	if err != nil {
		return nil, fmt.Errorf("extract_text_by_page failed: %w", err)
	}
	pageRange := tools.OptionalString(args, "page_range", "")
	encoding := tools.OptionalString(args, "encoding", pdfops.DefaultEncoding)

	resolved, err := resolveFile(ctx, t.store, args)
	if err != nil {
		return nil, fmt.Errorf("extract_text_by_page failed for pages=%v range=%q: %w", pageList, pageRange, err)
	}

	results, err := t.processor.ExtractTextByPage(resolved, pageList, pageRange, encoding)
	if err != nil {
		return nil, fmt.Errorf("extract_text_by_page failed for pages=%v range=%q: %w", pageList, pageRange, err)
	}

	logger.WithFields(logrus.Fields{
		"path":  resolved,
		"pages": len(results),
	}).Debug("Extracted text by page")

	return tools.Resolved{Result: results, Path: resolved}, nil
}
