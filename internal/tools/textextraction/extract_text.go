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

// ExtractTextTool extracts the full text of a PDF
type ExtractTextTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewExtractTextTool creates the extract_text tool
func NewExtractTextTool(store *filemanager.Store, processor *pdfops.Processor) *ExtractTextTool {
	return &ExtractTextTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *ExtractTextTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"extract_text",
		mcp.WithDescription("Extract all text from a PDF. Accepts a full path, a filename previously written to temp storage, bytes, or a base64/url object (saved to temp first)."),
		tools.WithFileInput("file", mcp.Required()),
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

// Execute resolves the input and extracts its text
func (t *ExtractTextTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	encoding := tools.OptionalString(args, "encoding", pdfops.DefaultEncoding)

	resolved, err := resolveFile(ctx, t.store, args)
	if err != nil {
		return nil, fmt.Errorf("extract_text failed: %w. %s", err, UsageHint)
	}

	result, err := t.processor.ExtractText(resolved, encoding)
	if err != nil {
		return nil, fmt.Errorf("extract_text failed: %w. %s", err, UsageHint)
	}

	logger.WithFields(logrus.Fields{
		"path":       resolved,
		"page_count": result.PageCount,
		"char_count": result.CharCount,
	}).Debug("Extracted text")

	return tools.Resolved{Result: result, Path: resolved}, nil
}

// ProvideExtendedInfo provides detailed usage information for the extract_text tool
func (t *ExtractTextTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Extract text from a PDF on disk",
				Arguments: map[string]any{
					"file": "/data/reports/q3.pdf",
				},
				ExpectedResult: "The document text with page_count, char_count and meta.resolved_path",
			},
			{
				Description: "Extract text from a previously uploaded file by name",
				Arguments: map[string]any{
					"file": "q3.pdf",
				},
				ExpectedResult: "The newest temp file named q3.pdf is used",
			},
			{
				Description: "Extract text from inline base64 content as Latin-1 (latin1)",
				Arguments: map[string]any{
					"file":     map[string]any{"base64": "JVBERi0xLjQK...", "filename": "inline.pdf"},
					"encoding": "latin1",
				},
				ExpectedResult: "The content is saved to temp storage, then extracted",
			},
		},
		CommonPatterns: []string{
			"Upload once with upload_file, then pass the returned filename to several extraction tools",
			"Use extract_text_by_page for long documents to keep responses small",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "not found error naming the temp directory",
				Solution: "The value was neither an existing path nor a temp filename. Check the suggestions in the error or upload the file first.",
			},
			{
				Problem:  "Empty text from a scanned document",
				Solution: "Scanned pages contain images, not text. Convert them with pdf_to_images and run OCR elsewhere.",
			},
		},
		ParameterDetails: map[string]string{
			"file":     tools.FileInputDescription,
			"encoding": "Any WHATWG encoding label, e.g. utf-8, latin1, windows-1252, shift_jis",
		},
		WhenToUse:    "Read the text layer of a whole PDF",
		WhenNotToUse: "Only a few pages are needed (use extract_text_by_page) or only document properties (use extract_metadata)",
	}
}
