package pdfmanipulation

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*filemanager.Store, *pdfops.Processor) {
	t.Helper()
	settings := testutils.TestSettings(t)
	logger := testutils.CreateTestLogger()
	store, err := filemanager.New(settings, filemanager.WithLogger(logger))
	require.NoError(t, err)
	return store, pdfops.New(settings, logger)
}

func run(t *testing.T, tool tools.Tool, args map[string]any) (map[string]any, error) {
	t.Helper()
	return tools.Run(context.Background(), testutils.CreateTestLogger(), tool, args)
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	return n
}

func TestMergeThenSplit(t *testing.T) {
	store, processor := newServices(t)
	first := testutils.WritePDF(t, t.TempDir(), "first.pdf", 2)
	testutils.WritePDF(t, store.Root(), "second.pdf", 3)

	response, err := run(t, NewMergeTool(store, processor), map[string]any{
		"input_files": []any{first, "second.pdf"},
		"output_path": "out/merged.pdf",
	})
	require.NoError(t, err)

	merged := filepath.Join(store.Root(), "out", "merged.pdf")
	assert.Equal(t, merged, response["output_path"])
	assert.Equal(t, json.Number("5"), response["total_pages"])
	assert.Equal(t, 5, pageCount(t, merged))
	assert.Contains(t, response, tools.MetaKey)

	response, err = run(t, NewSplitTool(store, processor), map[string]any{
		"file_path": merged,
		"split_ranges": []any{
			map[string]any{"start_page": 1.0, "end_page": 2.0, "output_path": "part1.pdf"},
			map[string]any{"start_page": 3.0, "end_page": 5.0, "output_path": "part2.pdf"},
		},
	})
	require.NoError(t, err)

	items, ok := response[tools.ItemsKey].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	total := 0
	for _, item := range items {
		out := item.(map[string]any)["output_path"].(string)
		assert.Equal(t, store.Root(), filepath.Dir(out))
		total += pageCount(t, out)
	}
	assert.Equal(t, 5, total)
}

func TestMerge_Errors(t *testing.T) {
	store, processor := newServices(t)
	tool := NewMergeTool(store, processor)
	doc := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 1)

	_, err := run(t, tool, map[string]any{"input_files": []any{}, "output_path": "x.pdf"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = run(t, tool, map[string]any{"input_files": []any{"missing.pdf"}, "output_path": "x.pdf"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Contains(t, err.Error(), "merge_pdfs failed")

	_, err = run(t, tool, map[string]any{"input_files": []any{doc}})
	assert.ErrorIs(t, err, errs.ErrValidation)

	outside := filepath.Join(t.TempDir(), "escape.pdf")
	_, err = run(t, tool, map[string]any{"input_files": []any{doc}, "output_path": outside})
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = run(t, tool, map[string]any{"input_files": []any{doc}, "output_path": "../escape.pdf"})
	assert.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestOutputNamingAnInput(t *testing.T) {
	store, processor := newServices(t)
	a := testutils.WritePDF(t, store.Root(), "a.pdf", 2)
	testutils.WritePDF(t, store.Root(), "b.pdf", 3)

	_, err := run(t, NewMergeTool(store, processor), map[string]any{
		"input_files": []any{"a.pdf", "b.pdf"},
		"output_path": "a.pdf",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, 2, pageCount(t, a))

	_, err = run(t, NewSplitTool(store, processor), map[string]any{
		"file_path": "a.pdf",
		"split_ranges": []any{
			map[string]any{"start_page": 1.0, "end_page": 1.0, "output_path": "a.pdf"},
			map[string]any{"start_page": 2.0, "end_page": 2.0, "output_path": "tail.pdf"},
		},
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, 2, pageCount(t, a))
	assert.NoFileExists(t, filepath.Join(store.Root(), "tail.pdf"))
}

func TestSplit_Errors(t *testing.T) {
	store, processor := newServices(t)
	tool := NewSplitTool(store, processor)
	doc := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 4)

	tests := []struct {
		name   string
		ranges []any
		target error
	}{
		{
			name: "overlapping ranges",
			ranges: []any{
				map[string]any{"start_page": 1.0, "end_page": 3.0, "output_path": "a.pdf"},
				map[string]any{"start_page": 3.0, "end_page": 4.0, "output_path": "b.pdf"},
			},
			target: errs.ErrValidation,
		},
		{
			name:   "range past the end",
			ranges: []any{map[string]any{"start_page": 2.0, "end_page": 9.0, "output_path": "a.pdf"}},
			target: errs.ErrValidation,
		},
		{
			name:   "missing output path",
			ranges: []any{map[string]any{"start_page": 1.0, "end_page": 2.0}},
			target: errs.ErrValidation,
		},
		{
			name:   "missing end page",
			ranges: []any{map[string]any{"start_page": 1.0, "output_path": "a.pdf"}},
			target: errs.ErrValidation,
		},
		{
			name:   "no ranges",
			ranges: []any{},
			target: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tool, map[string]any{"file_path": doc, "split_ranges": tt.ranges})
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), "split_pdf failed")
		})
	}
}

func TestRotate(t *testing.T) {
	store, processor := newServices(t)
	tool := NewRotateTool(store, processor)
	doc := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 3)

	for _, degrees := range []float64{90, 180, 270} {
		response, err := run(t, tool, map[string]any{
			"file_path":   doc,
			"rotations":   []any{map[string]any{"page": 2.0, "degrees": degrees}},
			"output_path": "rotated.pdf",
		})
		require.NoError(t, err, "degrees %v", degrees)
		assert.Equal(t, []any{json.Number("2")}, response["rotated_pages"])
		assert.Equal(t, json.Number("3"), response["page_count"])
	}

	response, err := run(t, tool, map[string]any{
		"file_path": doc,
		"rotations": []any{
			map[string]any{"page": 3.0, "degrees": 90.0},
			map[string]any{"page": 1.0, "degrees": 180.0},
		},
		"output_path": "both.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("3")}, response["rotated_pages"])
	assert.Equal(t, 3, pageCount(t, filepath.Join(store.Root(), "both.pdf")))
}

func TestRotate_Errors(t *testing.T) {
	store, processor := newServices(t)
	tool := NewRotateTool(store, processor)
	doc := testutils.WritePDF(t, t.TempDir(), "doc.pdf", 2)

	for _, rotation := range []map[string]any{
		{"page": 1.0, "degrees": 45.0},
		{"page": 1.0, "degrees": 360.0},
		{"page": 3.0, "degrees": 90.0},
		{"page": 1.0},
	} {
		_, err := run(t, tool, map[string]any{
			"file_path":   doc,
			"rotations":   []any{rotation},
			"output_path": "bad.pdf",
		})
		assert.ErrorIs(t, err, errs.ErrValidation, "%v", rotation)
	}
}

func TestSplit_ExtendedHelp(t *testing.T) {
	store, processor := newServices(t)
	help := NewSplitTool(store, processor).ProvideExtendedInfo()
	assert.NotEmpty(t, help.Examples)
	assert.NotEmpty(t, help.Troubleshooting)
}
