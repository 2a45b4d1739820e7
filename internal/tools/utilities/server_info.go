// Package utilities holds the housekeeping tools: server facts, temp storage listing and
// read-back, and quick PDF inspection.
package utilities

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sirupsen/logrus"
)

// ServerInfo is the non-secret configuration snapshot returned by server_info
type ServerInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	MaxFileSizeMB int    `json:"max_file_size_mb"`
	TempDir       string `json:"temp_dir"`
	LogFile       string `json:"log_file"`
}

// ServerInfoTool reports server identity and configuration
type ServerInfoTool struct {
	settings config.Settings
}

// NewServerInfoTool creates the server_info tool
func NewServerInfoTool(settings config.Settings) *ServerInfoTool {
	return &ServerInfoTool{settings: settings}
}

// Definition returns the tool's definition for MCP registration
func (t *ServerInfoTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"server_info",
		mcp.WithDescription("Return basic server info and a non-secret configuration snapshot: name, version, size limit, temp directory and log file."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute returns the configuration snapshot
func (t *ServerInfoTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (any, error) {
	return ServerInfo{
		Name:          t.settings.ServerName,
		Version:       t.settings.ServerVersion,
		MaxFileSizeMB: t.settings.MaxFileSizeMB,
		TempDir:       t.settings.TempPath(),
		LogFile:       t.settings.LogPath(),
	}, nil
}
