// Package server assembles the PDF services, the tool registry and the MCP server that exposes
// them.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sammcj/mcp-pdftools/internal/filemanager"
	"github.com/sammcj/mcp-pdftools/internal/imaging"
	"github.com/sammcj/mcp-pdftools/internal/pdfops"
	"github.com/sammcj/mcp-pdftools/internal/registry"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sammcj/mcp-pdftools/internal/tools/conversion"
	"github.com/sammcj/mcp-pdftools/internal/tools/pdfmanipulation"
	"github.com/sammcj/mcp-pdftools/internal/tools/textextraction"
	"github.com/sammcj/mcp-pdftools/internal/tools/uploads"
	"github.com/sammcj/mcp-pdftools/internal/tools/utilities"
	"github.com/sammcj/mcp-pdftools/internal/tools/utilities/toolhelp"
	"github.com/sirupsen/logrus"
)

// Instructions are sent to clients during initialisation.
const Instructions = "PDF tools. Upload files with upload_file (or pass bytes/base64 directly), then refer to " +
	"them by full path or by their temp filename. Everything the server writes lives in its temp directory; " +
	"use list_temp_resources to find it and get_resource_base64 to read it back. " +
	"Call get_tool_help when a call fails unexpectedly."

// Services are the shared dependencies handed to every tool.
type Services struct {
	Settings  config.Settings
	Store     *filemanager.Store
	Processor *pdfops.Processor
	Converter *imaging.Converter
}

// NewServices builds the file store and document services for settings.
func NewServices(settings config.Settings, logger *logrus.Logger, opts ...filemanager.Option) (*Services, error) {
	opts = append([]filemanager.Option{filemanager.WithLogger(logger)}, opts...)
	store, err := filemanager.New(settings, opts...)
	if err != nil {
		return nil, err
	}

	return &Services{
		Settings:  settings,
		Store:     store,
		Processor: pdfops.New(settings, logger),
		Converter: imaging.New(settings, logger),
	}, nil
}

// Tools returns every tool backed by services, in registration order. get_tool_help is not
// included since it needs the finished registry.
func (s *Services) Tools() []tools.Tool {
	return []tools.Tool{
		utilities.NewServerInfoTool(s.Settings),
		utilities.NewListTempResourcesTool(s.Store),
		utilities.NewPDFInfoTool(s.Store, s.Processor),
		utilities.NewResourceBase64Tool(s.Store),

		textextraction.NewExtractTextTool(s.Store, s.Processor),
		textextraction.NewExtractTextByPageTool(s.Store, s.Processor),
		textextraction.NewExtractMetadataTool(s.Store, s.Processor),

		pdfmanipulation.NewMergeTool(s.Store, s.Processor),
		pdfmanipulation.NewSplitTool(s.Store, s.Processor),
		pdfmanipulation.NewRotateTool(s.Store, s.Processor),

		conversion.NewPDFToImagesTool(s.Store, s.Converter),
		conversion.NewImagesToPDFTool(s.Store, s.Converter),

		uploads.NewUploadFileTool(s.Store),
		uploads.NewUploadBase64Tool(s.Store),
		uploads.NewUploadURLTool(s.Store),
	}
}

// NewRegistry registers all tools not named in disabled (a comma separated list).
func NewRegistry(services *Services, logger *logrus.Logger, disabled string) *registry.Registry {
	r := registry.New(logger, disabled)
	for _, tool := range services.Tools() {
		r.Register(tool)
	}
	// Last, so its tool_name enum sees everything above.
	r.Register(toolhelp.NewToolHelpTool(r))
	return r
}

// New creates an MCP server exposing every tool in r. Failed calls are recorded by errorLogger
// when it is enabled.
func New(r *registry.Registry, errorLogger *tools.ToolErrorLogger, settings config.Settings, transport string) *mcpserver.MCPServer {
	logger := r.GetLogger()

	mcpSrv := mcpserver.NewMCPServer(
		settings.ServerName,
		settings.ServerVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(Instructions),
	)

	enabledTools := r.GetTools()
	logger.WithField("tool_count", len(enabledTools)).Debug("MCP server created, registering tools")

	for _, name := range r.GetToolNames() {
		if transport != "stdio" {
			logger.Infof("Registering tool: %s", name)
		}
		mcpSrv.AddTool(enabledTools[name].Definition(), Handler(r, name, errorLogger, transport))
	}

	return mcpSrv
}

// Handler returns the MCP handler for the named tool.
func Handler(r *registry.Registry, name string, errorLogger *tools.ToolErrorLogger, transport string) mcpserver.ToolHandlerFunc {
	logger := r.GetLogger()

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool, ok := r.GetTool(name)
		if !ok {
			return nil, fmt.Errorf("tool not found: %s", name)
		}

		var args map[string]any
		switch raw := request.Params.Arguments.(type) {
		case nil:
			args = map[string]any{}
		case map[string]any:
			args = raw
		default:
			return nil, fmt.Errorf("invalid arguments type: expected map[string]any, got %T", request.Params.Arguments)
		}

		result, err := tools.Invoke(ctx, logger, tool, args)
		if err != nil {
			if transport != "stdio" {
				logger.WithError(err).Errorf("Tool execution failed: %s", name)
			}
			errorLogger.LogToolError(name, args, err, transport)
			return nil, fmt.Errorf("tool execution failed: %w", err)
		}

		return result, nil
	}
}
