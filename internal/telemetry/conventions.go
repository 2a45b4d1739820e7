package telemetry

// Attribute and span names used on tool spans and metrics.
const (
	AttrToolName      = "mcp.tool.name"
	AttrOperationID   = "mcp.operation.id"
	AttrToolArguments = "mcp.tool.arguments"
	AttrToolTruncated = "mcp.tool.arguments.truncated"
	AttrToolSuccess   = "mcp.tool.result.success"
	AttrToolError     = "mcp.tool.result.error"
	AttrErrorType     = "error.type"
	AttrTransport     = "mcp.transport"

	// SpanPrefixTool is joined with the tool name, e.g. "tool.merge_pdfs".
	SpanPrefixTool = "tool."

	instrumentationName = "github.com/sammcj/mcp-pdftools"
)
