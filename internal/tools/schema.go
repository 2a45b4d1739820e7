package tools

import "github.com/mark3labs/mcp-go/mcp"

// FileInputDescription explains the shapes accepted by file-typed parameters.
const FileInputDescription = "A file path, a filename previously uploaded to temp storage, an array of bytes (0-255), " +
	`{"base64": "...", "filename": "doc.pdf"}, {"url": "https://...", "filename": "doc.pdf"} ` +
	`or {"data"|"content"|"bytes"|"raw_bytes": ..., "name": "doc.pdf"}`

// WithFileInput adds a parameter accepting any of the file input shapes.
func WithFileInput(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return func(t *mcp.Tool) {
		schema := map[string]any{
			"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer", "minimum": 0, "maximum": 255},
				},
				map[string]any{"type": "object"},
			},
			"description": FileInputDescription,
		}

		for _, opt := range opts {
			opt(schema)
		}

		if required, ok := schema["required"].(bool); ok && required {
			delete(schema, "required")
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}

		t.InputSchema.Properties[name] = schema
	}
}
