package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Meta keys attached to every successful response.
const (
	MetaKey         = "meta"
	ItemsKey        = "items"
	OperationIDKey  = "operation_id"
	ExecutionMsKey  = "execution_ms"
	ResolvedPathKey = "resolved_path"
)

// Invoke runs tool and renders the shaped response as indented JSON text content.
func Invoke(ctx context.Context, logger *logrus.Logger, tool Tool, args map[string]any) (*mcp.CallToolResult, error) {
	response, err := Run(ctx, logger, tool, args)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// Run executes tool inside an operation: it assigns an operation id, times the call,
// traces and logs it, and returns the result as a JSON object carrying a meta block.
// List results are wrapped under "items".
func Run(ctx context.Context, logger *logrus.Logger, tool Tool, args map[string]any) (map[string]any, error) {
	name := tool.Definition().Name
	operationID := newOperationID()
	start := time.Now()

	if args == nil {
		args = map[string]any{}
	}

	entry := logger.WithFields(logrus.Fields{
		"tool":         name,
		"operation_id": operationID,
	})
	entry.WithField("args", telemetry.SanitiseArguments(args)).Info("op_start")

	spanCtx, span := telemetry.StartToolSpan(ctx, name, operationID, args)
	result, err := tool.Execute(spanCtx, logger, args)
	elapsed := time.Since(start)
	telemetry.EndToolSpan(span, err)
	telemetry.RecordToolCall(ctx, name, err == nil, float64(elapsed.Milliseconds()))

	if err != nil {
		telemetry.RecordToolError(ctx, name, err)
		entry.WithError(err).WithField("ms", elapsed.Milliseconds()).Error("op_error")
		return nil, err
	}

	response, err := shape(result, operationID, elapsed)
	if err != nil {
		return nil, err
	}

	entry.WithField("ms", elapsed.Milliseconds()).Info("op_end")
	return response, nil
}

func shape(result any, operationID string, elapsed time.Duration) (map[string]any, error) {
	meta := map[string]any{
		OperationIDKey: operationID,
		ExecutionMsKey: elapsed.Milliseconds(),
	}
	if resolved, ok := result.(Resolved); ok {
		result = resolved.Result
		meta[ResolvedPathKey] = resolved.Path
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	var response map[string]any
	switch v := decoded.(type) {
	case map[string]any:
		response = v
	case []any:
		response = map[string]any{ItemsKey: v}
	case nil:
		response = map[string]any{}
	default:
		response = map[string]any{"result": v}
	}

	response[MetaKey] = meta
	return response, nil
}

func newOperationID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}
