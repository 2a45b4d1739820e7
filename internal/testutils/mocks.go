package testutils

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// MockTool implements the Tool interface for testing
type MockTool struct {
	name       string
	definition mcp.Tool
	executeErr error
	result     any
	calls      []map[string]any
}

// NewMockTool creates a new mock tool
func NewMockTool(name string) *MockTool {
	return &MockTool{
		name: name,
		definition: mcp.NewTool(name,
			mcp.WithDescription("Mock tool for testing"),
			mcp.WithString("input",
				mcp.Description("Test input parameter"),
			),
		),
		result: map[string]any{"status": "ok"},
	}
}

// WithError configures the mock to return an error
func (m *MockTool) WithError(err error) *MockTool {
	m.executeErr = err
	return m
}

// WithResult configures the mock to return a specific result
func (m *MockTool) WithResult(result any) *MockTool {
	m.result = result
	return m
}

// Calls returns the arguments of every Execute call so far.
func (m *MockTool) Calls() []map[string]any {
	return m.calls
}

// Definition returns the tool's definition for MCP registration
func (m *MockTool) Definition() mcp.Tool {
	return m.definition
}

// Execute executes the mock tool
func (m *MockTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	m.calls = append(m.calls, args)
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	return m.result, nil
}
