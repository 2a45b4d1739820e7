// Package conversion exposes PDF rasterisation and image-to-PDF composition as MCP tools.
package conversion

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/imaging"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// PDFToImagesTool renders PDF pages to image files
type PDFToImagesTool struct {
	store     *filemanager.Store
	converter *imaging.Converter
}

// NewPDFToImagesTool creates the pdf_to_images tool
func NewPDFToImagesTool(store *filemanager.Store, converter *imaging.Converter) *PDFToImagesTool {
	return &PDFToImagesTool{store: store, converter: converter}
}

// Definition returns the tool's definition for MCP registration
func (t *PDFToImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_to_images",
		mcp.WithDescription("Convert PDF pages to PNG or JPEG images, one file per page. Requires Poppler (pdftoppm) on the server."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("PDF path or temp filename"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory for the images, relative to temporary storage or an absolute path inside it"),
		),
		mcp.WithString("format",
			mcp.Description("Image format"),
			mcp.Enum("png", "jpeg", "jpg"),
			mcp.DefaultString("png"),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Render resolution in dots per inch"),
			mcp.DefaultNumber(imaging.DefaultDPI),
			mcp.Min(1),
			mcp.Max(imaging.MaxDPI),
		),
		mcp.WithArray("pages",
			mcp.Description("1-based pages to render (default: all pages)"),
			mcp.Items(map[string]any{"type": "integer", "minimum": 1}),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute renders the selected pages into output_dir
func (t *PDFToImagesTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	filePath, err := tools.RequiredString(args, "file_path")
	if err != nil {
		return nil, fmt.Errorf("pdf_to_images failed: %w", err)
	}
	outputDir := tools.OptionalString(args, "output_dir", "")
	format := tools.OptionalString(args, "format", "png")

	dpi, err := tools.OptionalInt(args, "dpi", imaging.DefaultDPI)
	if err != nil {
		return nil, fmt.Errorf("pdf_to_images failed file=%s: %w", filePath, err)
	}
	selection, err := tools.IntSlice(args, "pages")
	if err != nil {
		return nil, fmt.Errorf("pdf_to_images failed file=%s: %w", filePath, err)
	}

	images, err := t.render(ctx, filePath, outputDir, format, dpi, selection)
	if err != nil {
		return nil, fmt.Errorf("pdf_to_images failed file=%s dir=%s fmt=%s dpi=%d pages=%v: %w",
			filePath, outputDir, format, dpi, selection, err)
	}

	logger.WithFields(logrus.Fields{
		"file":   filePath,
		"images": len(images),
		"format": format,
		"dpi":    dpi,
	}).Info("Converted PDF to images")

	return images, nil
}

func (t *PDFToImagesTool) render(ctx context.Context, filePath, outputDir, format string, dpi int, selection []int) ([]imaging.PageImage, error) {
	resolved, err := t.store.Resolve(ctx, filemanager.PathInput(filePath), "")
	if err != nil {
		return nil, err
	}
	dir, err := t.store.OutputDir(outputDir, "images")
	if err != nil {
		return nil, err
	}
	return t.converter.PDFToImages(ctx, resolved, dir, format, dpi, selection)
}

// ProvideExtendedInfo provides detailed usage information for the pdf_to_images tool
func (t *PDFToImagesTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Render the first two pages as PNG thumbnails",
				Arguments: map[string]any{
					"file_path":  "report.pdf",
					"output_dir": "report-pages",
					"dpi":        72,
					"pages":      []int{1, 2},
				},
				ExpectedResult: "A list of {page, path, width, height} for page-0001.png and page-0002.png",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Poppler not found (pdftoppm missing)",
				Solution: "Install Poppler (brew install poppler, apt install poppler-utils) and make sure pdftoppm is on the server's PATH.",
			},
			{
				Problem:  "dpi must be between 1 and 1200",
				Solution: "150 suits reading, 300 suits print. Large values produce very large images.",
			},
		},
		ParameterDetails: map[string]string{
			"pages":      "Pages are rendered in the order given; duplicates are dropped. Pages beyond the document are rejected.",
			"output_dir": "Created if missing. Existing page files with the same names are overwritten.",
		},
		WhenToUse:    "Visual inspection of pages, or handing pages to an image model",
		WhenNotToUse: "Only the text is needed (use extract_text)",
	}
}
