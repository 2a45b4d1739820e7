package toolhelp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sammcj/mcp-pdftools/internal/registry"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ToolHelpTool implements a tool that provides extended information about the server's tools
type ToolHelpTool struct {
	registry *registry.Registry
}

// NewToolHelpTool creates the get_tool_help tool. Register it after the tools it describes,
// since the tool_name enum is taken from the registry.
func NewToolHelpTool(r *registry.Registry) *ToolHelpTool {
	return &ToolHelpTool{registry: r}
}

// Definition returns the tool's definition for MCP registration
func (t *ToolHelpTool) Definition() mcp.Tool {
	toolsWithExtendedHelp := t.registry.GetToolNamesWithExtendedHelp()

	description := "Get detailed usage examples and troubleshooting for PDF tools when a call fails unexpectedly."
	if len(toolsWithExtendedHelp) == 0 {
		description = "No tools currently provide extended help information."
		toolsWithExtendedHelp = []string{}
	}

	return mcp.NewTool(
		"get_tool_help",
		mcp.WithDescription(description),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool to get help for"),
			mcp.Enum(toolsWithExtendedHelp...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute executes the get_tool_help tool
func (t *ToolHelpTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	toolName, err := tools.RequiredString(args, "tool_name")
	if err != nil {
		return nil, err
	}

	tool, exists := t.registry.GetTool(toolName)
	if !exists {
		return nil, fmt.Errorf("%w: tool '%s' not found or disabled. Tools with extended help: %s",
			errs.ErrNotFound, toolName, strings.Join(t.registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	extendedProvider, ok := tool.(tools.ExtendedHelpProvider)
	if !ok {
		return nil, fmt.Errorf("%w: tool '%s' does not provide extended help. Tools with extended help: %s",
			errs.ErrNotFound, toolName, strings.Join(t.registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	response := &ToolHelpResponse{
		ToolName:        toolName,
		BasicInfo:       extractBasicInfo(tool),
		HasExtendedInfo: true,
	}

	if extendedInfo := extendedProvider.ProvideExtendedInfo(); extendedInfo != nil {
		response.ExtendedInfo = extendedInfo
	} else {
		response.HasExtendedInfo = false
		response.Message = fmt.Sprintf("Tool '%s' implements ExtendedHelpProvider but returned no extended information", toolName)
	}

	logger.WithField("tool_name", toolName).Debug("Provided extended help")
	return response, nil
}

// extractBasicInfo extracts basic information from a tool's definition
func extractBasicInfo(tool tools.Tool) map[string]any {
	definition := tool.Definition()

	basicInfo := map[string]any{
		"name":        definition.Name,
		"description": definition.Description,
	}

	if definition.InputSchema.Type != "" {
		basicInfo["input_schema"] = definition.InputSchema
	}

	return basicInfo
}
