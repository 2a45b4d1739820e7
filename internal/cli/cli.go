// Package cli provides a direct command-line interface to the PDF tools, bypassing the MCP
// server entirely. Tools are invoked in-process through the registry, so no server or network
// round-trip is needed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/registry"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
)

// OutputFormat controls how tool results are rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q, use text or json", value)
	}
}

// Runner executes CLI commands against a tool registry.
type Runner struct {
	registry *registry.Registry
	logger   *logrus.Logger
	output   OutputFormat
	out      io.Writer
}

// NewRunner creates a Runner writing to out in the given format.
func NewRunner(r *registry.Registry, logger *logrus.Logger, output OutputFormat, out io.Writer) *Runner {
	return &Runner{registry: r, logger: logger, output: output, out: out}
}

// ListTools prints all enabled tools with their descriptions.
func (r *Runner) ListTools() error {
	registered := r.registry.GetTools()

	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	entries := make([]entry, 0, len(registered))
	for _, t := range registered {
		def := t.Definition()
		entries = append(entries, entry{Name: def.Name, Description: firstLine(def.Description)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	if r.output == OutputJSON {
		return writeJSON(r.out, entries)
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Description)
	}
	return w.Flush()
}

// HelpTool prints the schema and usage information for a single tool.
func (r *Runner) HelpTool(name string) error {
	tool, ok := r.resolveTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	def := tool.Definition()

	if r.output == OutputJSON {
		return writeJSON(r.out, def)
	}

	_, _ = fmt.Fprintf(r.out, "Tool: %s\n\n", def.Name)
	if def.Description != "" {
		_, _ = fmt.Fprintf(r.out, "%s\n\n", def.Description)
	}

	props := def.InputSchema.Properties
	required := toSet(def.InputSchema.Required)

	if len(props) == 0 {
		_, _ = fmt.Fprintln(r.out, "No parameters.")
		return nil
	}

	_, _ = fmt.Fprintln(r.out, "Parameters:")

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	slices.Sort(names)

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, pName := range names {
		pMap, ok := props[pName].(map[string]any)
		if !ok {
			continue
		}

		pDesc, _ := pMap["description"].(string)

		reqMark := ""
		if required[pName] {
			reqMark = " (required)"
		}

		_, _ = fmt.Fprintf(w, "  --%s\t%s\t%s%s%s\n", toFlagName(pName), schemaType(pMap), firstLine(pDesc), reqMark, formatEnum(pMap))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if provider, ok := tool.(tools.ExtendedHelpProvider); ok && provider.ProvideExtendedInfo() != nil {
		_, _ = fmt.Fprintf(r.out, "\nMore: run 'get_tool_help --tool-name=%s'\n", def.Name)
	}
	return nil
}

// RunTool executes a tool by name with the given arguments.
// args can be:
//   - A single JSON string: '{"key": "value"}'
//   - Flag-style arguments: --key=value --flag
//   - Mixed: --key=value '{"other": "json"}'  (flags take precedence)
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	tool, ok := r.resolveTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-pdftools cli list' to see available tools)", name)
	}

	params, err := parseArgs(args, tool.Definition())
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	response, err := tools.Run(ctx, r.logger, tool, params)
	if err != nil {
		return fmt.Errorf("tool error: %w", err)
	}

	return r.renderResult(response)
}

// parseArgs converts CLI arguments into a map suitable for tools.Run.
func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	params := make(map[string]any)
	schema := buildSchemaInfo(def)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			// Flags seen earlier win over JSON keys
			for k, v := range obj {
				if _, exists := params[k]; !exists {
					params[k] = v
				}
			}
			continue
		}

		if strings.HasPrefix(arg, "--") {
			key, val, err := parseFlag(arg, args, &i, schema)
			if err != nil {
				return nil, err
			}
			params[key] = val
			continue
		}

		return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or pass a JSON object)", arg)
	}

	return params, nil
}

// schemaInfo holds resolved schema information for argument parsing.
type schemaInfo struct {
	// typeMap maps parameter names to their JSON Schema types
	typeMap map[string]string
	// flagToParam maps kebab-case flag names to parameter names
	flagToParam map[string]string
}

// parseFlag parses a single --key=value or --key value.
func parseFlag(arg string, args []string, idx *int, schema schemaInfo) (string, any, error) {
	stripped := strings.TrimPrefix(arg, "--")

	if flagName, rawVal, found := strings.Cut(stripped, "="); found {
		paramName := schema.resolveParam(flagName)
		return paramName, coerceValue(rawVal, schema.typeMap[paramName]), nil
	}

	flagName := stripped
	paramName := schema.resolveParam(flagName)

	*idx++
	if *idx >= len(args) {
		return "", nil, fmt.Errorf("flag --%s requires a value", flagName)
	}
	return paramName, coerceValue(args[*idx], schema.typeMap[paramName]), nil
}

func (s schemaInfo) resolveParam(flagName string) string {
	if actual, ok := s.flagToParam[flagName]; ok {
		return actual
	}
	return strings.ReplaceAll(flagName, "-", "_")
}

func buildSchemaInfo(def mcp.Tool) schemaInfo {
	info := schemaInfo{
		typeMap:     make(map[string]string, len(def.InputSchema.Properties)),
		flagToParam: make(map[string]string, len(def.InputSchema.Properties)),
	}
	for name, prop := range def.InputSchema.Properties {
		if pm, ok := prop.(map[string]any); ok {
			info.typeMap[name] = schemaType(pm)
		}
		info.flagToParam[toFlagName(name)] = name
	}
	return info
}

// schemaType returns a property's JSON Schema type. File inputs, declared with anyOf, read as
// "file".
func schemaType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	if _, ok := prop["anyOf"]; ok {
		return "file"
	}
	return ""
}

// coerceValue converts a flag value to the Go type tools expect for schemaType. Numbers become
// float64, matching decoded JSON.
func coerceValue(raw, schemaType string) any {
	switch schemaType {
	case "number", "integer":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	case "array":
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr
		}
		// Comma separated; numeric items become numbers so page lists work unquoted
		parts := strings.Split(raw, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			p = strings.TrimSpace(p)
			if f, err := strconv.ParseFloat(p, 64); err == nil {
				out[i] = f
			} else {
				out[i] = p
			}
		}
		return out
	case "object", "file":
		var obj map[string]any
		if strings.HasPrefix(raw, "{") && json.Unmarshal([]byte(raw), &obj) == nil {
			return obj
		}
		return raw
	default:
		return raw
	}
}

// renderResult prints a tool response.
func (r *Runner) renderResult(response map[string]any) error {
	if r.output == OutputJSON {
		return writeJSON(r.out, response)
	}

	keys := make([]string, 0, len(response))
	for k := range response {
		if k != tools.MetaKey {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		switch v := response[k].(type) {
		case string, json.Number, bool:
			_, _ = fmt.Fprintf(w, "%s:\t%v\n", k, v)
		default:
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", k, err)
			}
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", k, data)
		}
	}
	return w.Flush()
}

// resolveTool looks a tool up by name, accepting kebab-case for snake_case names.
func (r *Runner) resolveTool(name string) (tools.Tool, bool) {
	if tool, ok := r.registry.GetTool(name); ok {
		return tool, true
	}
	return r.registry.GetTool(strings.ReplaceAll(name, "-", "_"))
}

// --- helpers ---

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	if before, _, found := strings.Cut(s, "\n"); found {
		return before
	}
	return s
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// toFlagName converts snake_case to kebab-case for CLI flags.
func toFlagName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

func formatEnum(pMap map[string]any) string {
	var vals []string
	switch enum := pMap["enum"].(type) {
	case []string:
		vals = enum
	case []any:
		for _, v := range enum {
			vals = append(vals, fmt.Sprint(v))
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return " [" + strings.Join(vals, "|") + "]"
}
