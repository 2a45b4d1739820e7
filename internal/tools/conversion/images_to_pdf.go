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

// ImagesToPDFTool builds a PDF with one page per image
type ImagesToPDFTool struct {
	store     *filemanager.Store
	converter *imaging.Converter
}

// NewImagesToPDFTool creates the images_to_pdf tool
func NewImagesToPDFTool(store *filemanager.Store, converter *imaging.Converter) *ImagesToPDFTool {
	return &ImagesToPDFTool{store: store, converter: converter}
}

// Definition returns the tool's definition for MCP registration
func (t *ImagesToPDFTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"images_to_pdf",
		mcp.WithDescription("Create a PDF from PNG or JPEG images. Each image becomes one page, scaled to fit and centred."),
		mcp.WithArray("image_paths",
			mcp.Required(),
			mcp.Description("Image paths or temp filenames, in page order"),
			mcp.WithStringItems(),
			mcp.MinItems(1),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Destination PDF, relative to temporary storage or an absolute path inside it"),
		),
		mcp.WithString("page_size",
			mcp.Description("Paper size"),
			mcp.Enum("A4", "Letter", "Legal", "A3"),
			mcp.DefaultString(imaging.DefaultPageSize),
		),
		mcp.WithString("orientation",
			mcp.Description("Page orientation"),
			mcp.Enum("portrait", "landscape"),
			mcp.DefaultString(imaging.DefaultOrientation),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute composes the images into output_path
func (t *ImagesToPDFTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	imagePaths, err := tools.StringSlice(args, "image_paths")
	if err != nil {
		return nil, fmt.Errorf("images_to_pdf failed: %w", err)
	}
	outputPath, err := tools.RequiredString(args, "output_path")
	if err != nil {
		return nil, fmt.Errorf("images_to_pdf failed images=%v: %w", imagePaths, err)
	}
	pageSize := tools.OptionalString(args, "page_size", imaging.DefaultPageSize)
	orientation := tools.OptionalString(args, "orientation", imaging.DefaultOrientation)

	result, err := t.compose(ctx, imagePaths, outputPath, pageSize, orientation)
	if err != nil {
		return nil, fmt.Errorf("images_to_pdf failed images=%v out=%s size=%s orient=%s: %w",
			imagePaths, outputPath, pageSize, orientation, err)
	}

	logger.WithFields(logrus.Fields{
		"images": len(imagePaths),
		"output": result.OutputPath,
	}).Info("Converted images to PDF")

	return result, nil
}

func (t *ImagesToPDFTool) compose(ctx context.Context, imagePaths []string, outputPath, pageSize, orientation string) (*imaging.ComposeResult, error) {
	// Reject bad presets before touching the filesystem.
	if _, err := imaging.ResolvePageSize(pageSize, orientation); err != nil {
		return nil, err
	}
	resolved, err := t.store.ResolvePaths(ctx, imagePaths)
	if err != nil {
		return nil, err
	}
	out, err := t.store.OutputPath(outputPath, "images.pdf")
	if err != nil {
		return nil, err
	}
	return t.converter.ImagesToPDF(resolved, out, pageSize, orientation)
}
