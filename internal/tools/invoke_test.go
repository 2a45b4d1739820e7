package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRun_AttachesMeta(t *testing.T) {
	tool := testutils.NewMockTool("sample").WithResult(record{Name: "a", Count: 3})

	response, err := Run(context.Background(), testutils.CreateTestLogger(), tool, map[string]any{"input": "x"})
	require.NoError(t, err)

	assert.Equal(t, "a", response["name"])
	assert.Equal(t, json.Number("3"), response["count"])

	meta, ok := response[MetaKey].(map[string]any)
	require.True(t, ok)
	assert.Len(t, meta[OperationIDKey], 32)
	assert.GreaterOrEqual(t, meta[ExecutionMsKey], int64(0))
	assert.NotContains(t, meta, ResolvedPathKey)
	assert.Equal(t, []map[string]any{{"input": "x"}}, tool.Calls())
}

func TestRun_WrapsLists(t *testing.T) {
	tool := testutils.NewMockTool("lister").WithResult([]record{{Name: "a"}, {Name: "b"}})

	response, err := Run(context.Background(), testutils.CreateTestLogger(), tool, nil)
	require.NoError(t, err)

	items, ok := response[ItemsKey].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
	assert.Contains(t, response, MetaKey)
}

func TestRun_ResolvedPath(t *testing.T) {
	tool := testutils.NewMockTool("extract").WithResult(Resolved{Result: record{Name: "doc"}, Path: "/tmp/doc.pdf"})

	response, err := Run(context.Background(), testutils.CreateTestLogger(), tool, nil)
	require.NoError(t, err)

	meta := response[MetaKey].(map[string]any)
	assert.Equal(t, "/tmp/doc.pdf", meta[ResolvedPathKey])
	assert.Equal(t, "doc", response["name"])
}

func TestRun_UniqueOperationIDs(t *testing.T) {
	tool := testutils.NewMockTool("sample")
	logger := testutils.CreateTestLogger()

	first, err := Run(context.Background(), logger, tool, nil)
	require.NoError(t, err)
	second, err := Run(context.Background(), logger, tool, nil)
	require.NoError(t, err)

	assert.NotEqual(t,
		first[MetaKey].(map[string]any)[OperationIDKey],
		second[MetaKey].(map[string]any)[OperationIDKey])
}

func TestRun_PropagatesErrors(t *testing.T) {
	cause := fmt.Errorf("%w: bad page", errs.ErrValidation)
	tool := testutils.NewMockTool("broken").WithError(cause)

	_, err := Run(context.Background(), testutils.CreateTestLogger(), tool, map[string]any{"password": "secret"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestInvoke_RendersJSONText(t *testing.T) {
	tool := testutils.NewMockTool("sample")

	result, err := Invoke(context.Background(), testutils.CreateTestLogger(), tool, nil)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Contains(t, decoded, MetaKey)
}

func TestShape_Scalars(t *testing.T) {
	response, err := shape("plain", "id", 0)
	require.NoError(t, err)
	assert.Equal(t, "plain", response["result"])

	response, err = shape(nil, "id", 0)
	require.NoError(t, err)
	assert.Len(t, response, 1)
}
