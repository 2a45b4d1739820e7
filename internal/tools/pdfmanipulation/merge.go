// Package pdfmanipulation exposes merge, split and rotate as MCP tools. Inputs may be paths or
// temp filenames; outputs are always placed inside temp storage.
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

const outputPathDescription = "Destination PDF, relative to temporary storage or an absolute path inside it"

// MergeTool concatenates PDFs
type MergeTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewMergeTool creates the merge_pdfs tool
func NewMergeTool(store *filemanager.Store, processor *pdfops.Processor) *MergeTool {
	return &MergeTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *MergeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"merge_pdfs",
		mcp.WithDescription("Merge multiple PDF files, in the given order, into one document."),
		mcp.WithArray("input_files",
			mcp.Required(),
			mcp.Description("PDF paths or temp filenames to merge"),
			mcp.WithStringItems(),
			mcp.MinItems(1),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description(outputPathDescription),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute merges the inputs into output_path
func (t *MergeTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	inputs, err := tools.StringSlice(args, "input_files")
	if err != nil {
		return nil, fmt.Errorf("merge_pdfs failed: %w", err)
	}
	outputPath, err := tools.RequiredString(args, "output_path")
	if err != nil {
		return nil, fmt.Errorf("merge_pdfs failed: %w", err)
	}

	result, err := t.merge(ctx, inputs, outputPath)
	if err != nil {
		return nil, fmt.Errorf("merge_pdfs failed inputs=%v out=%s: %w", inputs, outputPath, err)
	}

	logger.WithFields(logrus.Fields{
		"inputs": len(inputs),
		"output": result.OutputPath,
		"pages":  result.TotalPages,
	}).Info("Merged PDFs")

	return result, nil
}

func (t *MergeTool) merge(ctx context.Context, inputs []string, outputPath string) (*pdfops.MergeResult, error) {
	resolved, err := t.store.ResolvePaths(ctx, inputs)
	if err != nil {
		return nil, err
	}
	out, err := t.store.OutputPath(outputPath, "merged.pdf")
	if err != nil {
		return nil, err
	}
	return t.processor.Merge(resolved, out)
}
