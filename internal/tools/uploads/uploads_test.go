package uploads

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...filemanager.Option) *filemanager.Store {
	t.Helper()
	opts = append([]filemanager.Option{filemanager.WithLogger(testutils.CreateTestLogger())}, opts...)
	store, err := filemanager.New(testutils.TestSettings(t), opts...)
	require.NoError(t, err)
	return store
}

func run(t *testing.T, tool tools.Tool, args map[string]any) (map[string]any, error) {
	t.Helper()
	return tools.Run(context.Background(), testutils.CreateTestLogger(), tool, args)
}

func TestUploadFile(t *testing.T) {
	store := newStore(t)
	tool := NewUploadFileTool(store)
	existing := testutils.WritePDF(t, t.TempDir(), "existing.pdf", 1)

	tests := []struct {
		name     string
		args     map[string]any
		filename string
		inRoot   bool
	}{
		{
			name:     "existing path is returned in place",
			args:     map[string]any{"file": existing},
			filename: "existing.pdf",
		},
		{
			name:     "bytes use the filename argument",
			args:     map[string]any{"file": []any{37.0, 80.0, 68.0, 70.0}, "filename": "scan.pdf"},
			filename: "scan.pdf",
			inRoot:   true,
		},
		{
			name:     "bytes without a filename",
			args:     map[string]any{"file": []any{1.0, 2.0}},
			filename: filemanager.DefaultUploadName,
			inRoot:   true,
		},
		{
			name:     "base64 object keeps its own name",
			args:     map[string]any{"file": map[string]any{"base64": "aGVsbG8=", "filename": "hello.txt"}},
			filename: "hello.txt",
			inRoot:   true,
		},
		{
			name:     "content object",
			args:     map[string]any{"file": map[string]any{"content": "notes", "name": "notes.txt"}},
			filename: "notes.txt",
			inRoot:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := run(t, tool, tt.args)
			require.NoError(t, err)

			path := response["path"].(string)
			assert.Equal(t, tt.filename, response["filename"])
			assert.Equal(t, filepath.Dir(path), response["directory"])
			assert.FileExists(t, path)
			if tt.inRoot {
				assert.Equal(t, store.Root(), response["directory"])
			} else {
				assert.Equal(t, existing, path)
			}
			assert.Contains(t, response, tools.MetaKey)
		})
	}
}

func TestUploadFile_UniqueNames(t *testing.T) {
	store := newStore(t)
	tool := NewUploadFileTool(store)
	args := map[string]any{"file": []any{1.0}, "filename": "same.bin"}

	first, err := run(t, tool, args)
	require.NoError(t, err)
	second, err := run(t, tool, args)
	require.NoError(t, err)

	assert.NotEqual(t, first["path"], second["path"])
	assert.Equal(t, ".bin", filepath.Ext(second["filename"].(string)))
}

func TestUploadFile_Errors(t *testing.T) {
	tool := NewUploadFileTool(newStore(t))

	_, err := run(t, tool, map[string]any{})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = run(t, tool, map[string]any{"file": 42.0})
	assert.ErrorIs(t, err, errs.ErrUnsupportedInput)
	assert.Contains(t, err.Error(), "upload_file failed")

	_, err = run(t, tool, map[string]any{"file": map[string]any{"base64": "!!!"}})
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestUploadBase64(t *testing.T) {
	store := newStore(t)
	payload := []byte("%PDF-1.4 inline")

	response, err := run(t, NewUploadBase64Tool(store), map[string]any{
		"base64":   base64.StdEncoding.EncodeToString(payload),
		"filename": "inline.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "inline.pdf", response["filename"])
	assert.Equal(t, store.Root(), response["directory"])
	assert.Equal(t, json.Number("15"), response["size"])

	data, err := os.ReadFile(response["path"].(string))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestUploadBase64_Errors(t *testing.T) {
	tool := NewUploadBase64Tool(newStore(t))

	_, err := run(t, tool, map[string]any{"base64": "aGk=", "filename": ""})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = run(t, tool, map[string]any{"filename": "a.pdf"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = run(t, tool, map[string]any{"base64": "not base64!", "filename": "a.pdf"})
	assert.ErrorIs(t, err, errs.ErrDecode)
	assert.Contains(t, err.Error(), "upload_file_base64 failed")
}

func TestUploadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/remote.pdf" {
			_, _ = w.Write([]byte("%PDF-remote"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := newStore(t, filemanager.WithHTTPClient(srv.Client()))
	tool := NewUploadURLTool(store)

	response, err := run(t, tool, map[string]any{"url": srv.URL + "/docs/remote.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "remote.pdf", response["filename"])
	assert.Equal(t, json.Number("11"), response["size"])

	response, err = run(t, tool, map[string]any{"url": srv.URL + "/docs/remote.pdf", "filename": "renamed.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", response["filename"])

	_, err = run(t, tool, map[string]any{"url": srv.URL + "/missing.pdf"})
	assert.ErrorIs(t, err, errs.ErrExternal)
	assert.Contains(t, err.Error(), "upload_file_url failed")

	_, err = run(t, tool, map[string]any{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUploadURL_WithoutClient(t *testing.T) {
	tool := NewUploadURLTool(newStore(t, filemanager.WithHTTPClient(nil)))

	_, err := run(t, tool, map[string]any{"url": "https://example.com/a.pdf"})
	assert.ErrorIs(t, err, errs.ErrDependencyMissing)
}

func TestUploadFile_ExtendedHelp(t *testing.T) {
	help := NewUploadFileTool(newStore(t)).ProvideExtendedInfo()
	assert.Len(t, help.Examples, 2)
	assert.Contains(t, help.ParameterDetails, "file")
}
