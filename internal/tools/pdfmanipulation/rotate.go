package pdfmanipulation

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// RotateTool turns selected pages of a PDF
type RotateTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewRotateTool creates the rotate_pages tool
func NewRotateTool(store *filemanager.Store, processor *pdfops.Processor) *RotateTool {
	return &RotateTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *RotateTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"rotate_pages",
		mcp.WithDescription("Rotate specific pages of a PDF clockwise by 90, 180 or 270 degrees and write the result to a new file."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("PDF path or temp filename"),
		),
		mcp.WithArray("rotations",
			mcp.Required(),
			mcp.Description("Pages to rotate; a page listed twice takes its last rotation"),
			mcp.MinItems(1),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page":    map[string]any{"type": "integer", "minimum": 1},
					"degrees": map[string]any{"type": "integer", "enum": []int{90, 180, 270}},
				},
				"required": []string{"page", "degrees"},
			}),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description(outputPathDescription),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute applies the rotations
func (t *RotateTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	filePath, err := tools.RequiredString(args, "file_path")
	if err != nil {
		return nil, fmt.Errorf("rotate_pages failed: %w", err)
	}
	outputPath, err := tools.RequiredString(args, "output_path")
	if err != nil {
		return nil, fmt.Errorf("rotate_pages failed file=%s: %w", filePath, err)
	}
	rawRotations, err := tools.ObjectSlice(args, "rotations")
	if err != nil {
		return nil, fmt.Errorf("rotate_pages failed file=%s: %w", filePath, err)
	}

	result, err := t.rotate(ctx, filePath, rawRotations, outputPath)
	if err != nil {
		return nil, fmt.Errorf("rotate_pages failed file=%s rotations=%v out=%s: %w", filePath, rawRotations, outputPath, err)
	}

	logger.WithFields(logrus.Fields{
		"file":    filePath,
		"rotated": result.RotatedPages,
		"output":  result.OutputPath,
	}).Info("Rotated pages")

	return result, nil
}

func (t *RotateTool) rotate(ctx context.Context, filePath string, rawRotations []map[string]any, outputPath string) (*pdfops.RotateResult, error) {
	rotations := make([]pdfops.Rotation, 0, len(rawRotations))
	for i, raw := range rawRotations {
		page, err := tools.IntField(raw, "page")
		if err != nil {
			return nil, fmt.Errorf("rotations[%d]: %w", i, err)
		}
		degrees, err := tools.IntField(raw, "degrees")
		if err != nil {
			return nil, fmt.Errorf("rotations[%d]: %w", i, err)
		}
		rotations = append(rotations, pdfops.Rotation{Page: page, Degrees: degrees})
	}

	resolved, err := t.store.Resolve(ctx, filemanager.PathInput(filePath), "")
	if err != nil {
		return nil, err
	}
	out, err := t.store.OutputPath(outputPath, "rotated.pdf")
	if err != nil {
		return nil, err
	}
	return t.processor.Rotate(resolved, rotations, out)
}
