// Package textextraction exposes text and metadata extraction as MCP tools. Each tool accepts
// any file input shape and resolves it into temp storage before reading.
package textextraction

import (
	"context"
	"fmt"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
)

// UploadHint names inputs that arrive without a filename of their own.
const UploadHint = "uploaded.pdf"

// UsageHint is appended to extract_text failures.
const UsageHint = "Provide a full path, upload the file first via 'upload_file', or pass bytes/base64. Example payload:\n" +
	"{\n  \"name\": \"upload_file\",\n  \"arguments\": {\n    \"file\": { \"base64\": \"<...>\", \"filename\": \"my.pdf\" }\n  }\n}"

func resolveFile(ctx context.Context, store *filemanager.Store, args map[string]any) (string, error) {
	raw, ok := args["file"]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: missing required parameter: file", errs.ErrValidation)
	}
	return store.ResolveRaw(ctx, raw, UploadHint)
}
