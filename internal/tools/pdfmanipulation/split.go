package pdfmanipulation

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// SplitTool writes page ranges of a PDF to separate files
type SplitTool struct {
	store     *filemanager.Store
	processor *pdfops.Processor
}

// NewSplitTool creates the split_pdf tool
func NewSplitTool(store *filemanager.Store, processor *pdfops.Processor) *SplitTool {
	return &SplitTool{store: store, processor: processor}
}

// Definition returns the tool's definition for MCP registration
func (t *SplitTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"split_pdf",
		mcp.WithDescription("Split a PDF into separate files by page ranges. Ranges are inclusive and must not overlap."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("PDF path or temp filename to split"),
		),
		mcp.WithArray("split_ranges",
			mcp.Required(),
			mcp.Description("Ranges to extract, each written to its own output_path"),
			mcp.MinItems(1),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start_page":  map[string]any{"type": "integer", "minimum": 1},
					"end_page":    map[string]any{"type": "integer", "minimum": 1},
					"output_path": map[string]any{"type": "string", "description": outputPathDescription},
				},
				"required": []string{"start_page", "end_page", "output_path"},
			}),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute splits file_path into the requested ranges
func (t *SplitTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	filePath, err := tools.RequiredString(args, "file_path")
	if err != nil {
		return nil, fmt.Errorf("split_pdf failed: %w", err)
	}
	rawRanges, err := tools.ObjectSlice(args, "split_ranges")
	if err != nil {
		return nil, fmt.Errorf("split_pdf failed file=%s: %w", filePath, err)
	}

	results, err := t.split(ctx, filePath, rawRanges)
	if err != nil {
		return nil, fmt.Errorf("split_pdf failed file=%s ranges=%v: %w", filePath, rawRanges, err)
	}

	logger.WithFields(logrus.Fields{
		"file":    filePath,
		"outputs": len(results),
	}).Info("Split PDF")

	return results, nil
}

func (t *SplitTool) split(ctx context.Context, filePath string, rawRanges []map[string]any) ([]pdfops.SplitResult, error) {
	ranges, err := t.parseRanges(rawRanges)
	if err != nil {
		return nil, err
	}
	resolved, err := t.store.Resolve(ctx, filemanager.PathInput(filePath), "")
	if err != nil {
		return nil, err
	}
	return t.processor.Split(resolved, ranges)
}

// parseRanges decodes split_ranges and places every output inside temp storage.
func (t *SplitTool) parseRanges(rawRanges []map[string]any) ([]pdfops.SplitRange, error) {
	ranges := make([]pdfops.SplitRange, 0, len(rawRanges))
	for i, raw := range rawRanges {
		start, err := tools.IntField(raw, "start_page")
		if err != nil {
			return nil, fmt.Errorf("split_ranges[%d]: %w", i, err)
		}
		end, err := tools.IntField(raw, "end_page")
		if err != nil {
			return nil, fmt.Errorf("split_ranges[%d]: %w", i, err)
		}

		outputPath := tools.OptionalString(raw, "output_path", "")
		if outputPath == "" {
			return nil, fmt.Errorf("%w: split_ranges[%d] must include output_path", errs.ErrValidation, i)
		}
		out, err := t.store.OutputPath(outputPath, "")
		if err != nil {
			return nil, fmt.Errorf("split_ranges[%d]: %w", i, err)
		}

		ranges = append(ranges, pdfops.SplitRange{StartPage: start, EndPage: end, OutputPath: out})
	}
	return ranges, nil
}

// ProvideExtendedInfo provides detailed usage information for the split_pdf tool
func (t *SplitTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Split a 10 page report into two halves",
				Arguments: map[string]any{
					"file_path": "report.pdf",
					"split_ranges": []map[string]any{
						{"start_page": 1, "end_page": 5, "output_path": "report-part1.pdf"},
						{"start_page": 6, "end_page": 10, "output_path": "report-part2.pdf"},
					},
				},
				ExpectedResult: "Two files in temporary storage with 5 pages each",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "overlapping page in ranges",
				Solution: "Each page may appear in at most one range. Run split_pdf twice if a page is needed in two outputs.",
			},
			{
				Problem:  "path is outside the temp directory",
				Solution: "Use a relative output_path; it is created inside temporary storage.",
			},
		},
		ParameterDetails: map[string]string{
			"split_ranges": "Inclusive 1-based page ranges. Pages outside the document are rejected.",
		},
		WhenToUse:    "Extract contiguous page ranges into separate documents",
		WhenNotToUse: "Only the text of some pages is needed (use extract_text_by_page)",
	}
}
