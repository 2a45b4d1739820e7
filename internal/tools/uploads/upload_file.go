package uploads

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// UploadFileTool persists any supported file input
type UploadFileTool struct {
	store *filemanager.Store
}

// NewUploadFileTool creates the upload_file tool
func NewUploadFileTool(store *filemanager.Store) *UploadFileTool {
	return &UploadFileTool{store: store}
}

// Definition returns the tool's definition for MCP registration
func (t *UploadFileTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"upload_file",
		mcp.WithDescription("Persist a file into server temp storage and return its path. "+
			"Paths and known temp filenames are returned as is; bytes, base64 and URLs are written to a new file."),
		tools.WithFileInput("file", mcp.Required()),
		mcp.WithString("filename",
			mcp.Description("Name for the stored file when the input carries none (default upload.bin)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// Execute resolves file into temp storage
func (t *UploadFileTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	raw, ok := args["file"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("upload_file failed: %w: missing required parameter: file", errs.ErrValidation)
	}
	hint := tools.OptionalString(args, "filename", "")

	path, err := t.store.ResolveRaw(ctx, raw, hint)
	if err != nil {
		return nil, fmt.Errorf("upload_file failed: %w", err)
	}
	upload, err := describe(path)
	if err != nil {
		return nil, fmt.Errorf("upload_file failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path": upload.Path,
		"size": upload.Size,
	}).Info("Stored upload")

	return upload, nil
}

// ProvideExtendedInfo provides detailed usage information for the upload_file tool
func (t *UploadFileTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Upload inline base64 content",
				Arguments: map[string]any{
					"file": map[string]any{"base64": "JVBERi0xLjQK...", "filename": "invoice.pdf"},
				},
				ExpectedResult: "The stored path; later calls can pass \"invoice.pdf\" as the file",
			},
			{
				Description: "Upload raw bytes with a name",
				Arguments: map[string]any{
					"file":     []int{37, 80, 68, 70},
					"filename": "scan.pdf",
				},
				ExpectedResult: "The stored path of scan.pdf",
			},
		},
		CommonPatterns: []string{
			"Upload once, then refer to the returned filename in extract_text, merge_pdfs or split_pdf",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Unsupported input",
				Solution: "Pass " + filemanager.AcceptedShapes + ".",
			},
			{
				Problem:  "The stored filename has a random suffix",
				Solution: "A file with that name already existed; use the returned filename or path.",
			},
		},
		ParameterDetails: map[string]string{
			"file": tools.FileInputDescription,
		},
	}
}
