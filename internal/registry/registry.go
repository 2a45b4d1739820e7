package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// DisabledToolsEnv lists tool names, comma separated, that are never registered.
const DisabledToolsEnv = "DISABLED_TOOLS"

// Registry holds the tools exposed by one server instance.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]tools.Tool
	disabled map[string]bool
	logger   *logrus.Logger
}

// New creates an empty registry. disabled is the raw DISABLED_TOOLS value.
func New(logger *logrus.Logger, disabled string) *Registry {
	r := &Registry{
		tools:    make(map[string]tools.Tool),
		disabled: parseDisabledTools(disabled),
		logger:   logger,
	}
	if len(r.disabled) > 0 {
		logger.WithField("count", len(r.disabled)).Debug("Parsed disabled tools from environment")
	}
	return r
}

// parseDisabledTools parses a comma-separated list of tool names into a set
func parseDisabledTools(value string) map[string]bool {
	disabled := make(map[string]bool)
	for tool := range strings.SplitSeq(value, ",") {
		tool = strings.TrimSpace(tool)
		if tool != "" {
			disabled[tool] = true
		}
	}
	return disabled
}

// ShouldRegisterTool reports whether name is not disabled.
func (r *Registry) ShouldRegisterTool(name string) bool {
	if r.disabled[name] {
		r.logger.WithField("tool", name).Debug("Tool disabled via environment variable")
		return false
	}
	return true
}

// Register adds a tool implementation to the registry if it should be registered
func (r *Registry) Register(tool tools.Tool) {
	name := tool.Definition().Name
	if !r.ShouldRegisterTool(name) {
		return
	}

	r.mu.Lock()
	r.tools[name] = tool
	r.mu.Unlock()

	r.logger.WithField("tool", name).Debug("Tool successfully registered")
}

// GetTool retrieves a tool by name, returns false if disabled or unknown
func (r *Registry) GetTool(name string) (tools.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// GetTools returns a copy of all registered tools
func (r *Registry) GetTools() map[string]tools.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]tools.Tool, len(r.tools))
	for name, tool := range r.tools {
		out[name] = tool
	}
	return out
}

// GetToolNames returns the sorted names of all registered tools
func (r *Registry) GetToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetToolNamesWithExtendedHelp returns a sorted list of tool names that provide extended help
func (r *Registry) GetToolNamesWithExtendedHelp() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, tool := range r.tools {
		if _, ok := tool.(tools.ExtendedHelpProvider); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetLogger returns the shared logger instance
func (r *Registry) GetLogger() *logrus.Logger {
	return r.logger
}
