package server

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/registry"
	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTools = []string{
	"extract_metadata",
	"extract_text",
	"extract_text_by_page",
	"get_pdf_info",
	"get_resource_base64",
	"get_tool_help",
	"images_to_pdf",
	"list_temp_resources",
	"merge_pdfs",
	"pdf_to_images",
	"rotate_pages",
	"server_info",
	"split_pdf",
	"upload_file",
	"upload_file_base64",
	"upload_file_url",
}

func newRegistry(t *testing.T, disabled string) (*registry.Registry, *Services) {
	t.Helper()
	logger := testutils.CreateTestLogger()
	services, err := NewServices(testutils.TestSettings(t), logger)
	require.NoError(t, err)
	return NewRegistry(services, logger, disabled), services
}

func call(t *testing.T, r *registry.Registry, name string, args any, errorLogger *tools.ToolErrorLogger) (*mcp.CallToolResult, error) {
	t.Helper()
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return Handler(r, name, errorLogger, "stdio")(context.Background(), request)
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestNewRegistry_RegistersEveryTool(t *testing.T) {
	r, _ := newRegistry(t, "")
	assert.Equal(t, allTools, r.GetToolNames())
}

func TestNewRegistry_DisabledTools(t *testing.T) {
	r, _ := newRegistry(t, "upload_file_url, pdf_to_images")

	names := r.GetToolNames()
	assert.NotContains(t, names, "upload_file_url")
	assert.NotContains(t, names, "pdf_to_images")
	assert.Len(t, names, len(allTools)-2)

	help, ok := r.GetTool("get_tool_help")
	require.True(t, ok)
	property := help.Definition().InputSchema.Properties["tool_name"].(map[string]any)
	assert.NotContains(t, property["enum"], "pdf_to_images")
}

func TestNew(t *testing.T) {
	r, services := newRegistry(t, "")
	assert.NotNil(t, New(r, nil, services.Settings, "stdio"))
}

func TestHandler_Success(t *testing.T) {
	r, services := newRegistry(t, "")
	doc := testutils.WritePDF(t, services.Store.Root(), "hello.pdf", 2)

	result, err := call(t, r, "extract_text", map[string]any{"file": "hello.pdf"}, nil)
	require.NoError(t, err)

	response := decode(t, result)
	assert.Contains(t, response["text"], "Hello World")
	meta := response[tools.MetaKey].(map[string]any)
	assert.NotEmpty(t, meta[tools.OperationIDKey])
	assert.Equal(t, doc, meta[tools.ResolvedPathKey])
}

func TestHandler_NilArguments(t *testing.T) {
	r, _ := newRegistry(t, "")

	result, err := call(t, r, "server_info", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, decode(t, result), "temp_dir")
}

func TestHandler_Errors(t *testing.T) {
	r, _ := newRegistry(t, "")
	dir := t.TempDir()
	errorLogger, err := tools.NewToolErrorLogger(testutils.CreateTestLogger(), dir, true)
	require.NoError(t, err)

	_, err = call(t, r, "get_pdf_info", map[string]any{"file_path": "missing.pdf"}, errorLogger)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Contains(t, err.Error(), "tool execution failed")
	assert.Contains(t, err.Error(), "get_pdf_info failed")

	_, err = call(t, r, "server_info", "not an object", errorLogger)
	assert.ErrorContains(t, err, "invalid arguments type")

	_, err = call(t, r, "fax_pdf", map[string]any{}, errorLogger)
	assert.ErrorContains(t, err, "tool not found")

	require.NoError(t, errorLogger.Close())
	content, err := os.ReadFile(errorLogger.GetLogFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(content), `"tool_name":"get_pdf_info"`)
	assert.Contains(t, string(content), `"transport":"stdio"`)
}
