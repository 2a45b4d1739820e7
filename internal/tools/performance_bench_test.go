package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// benchTool returns a fixed page listing so the benchmarks measure the pipeline, not the tool.
type benchTool struct{}

func (benchTool) Definition() mcp.Tool {
	return mcp.NewTool("bench")
}

func (benchTool) Execute(_ context.Context, _ *logrus.Logger, _ map[string]any) (any, error) {
	pages := make([]record, 20)
	for i := range pages {
		pages[i] = record{Name: "page", Count: i + 1}
	}
	return pages, nil
}

func benchLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

// BenchmarkRun measures response shaping and metadata overhead
func BenchmarkRun(b *testing.B) {
	logger := benchLogger()
	ctx := context.Background()
	args := map[string]any{"file": "doc.pdf", "pages": []any{1.0, 2.0}}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Run(ctx, logger, benchTool{}, args)
	}
}

// BenchmarkInvoke adds JSON rendering of the MCP text content on top of Run
func BenchmarkInvoke(b *testing.B) {
	logger := benchLogger()
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Invoke(ctx, logger, benchTool{}, nil)
	}
}

// BenchmarkArgs covers the argument helpers every tool calls
func BenchmarkArgs(b *testing.B) {
	args := map[string]any{
		"pages":  []any{1.0, 2.0, 3.0, 4.0},
		"inputs": []any{"a.pdf", "b.pdf"},
		"dpi":    150.0,
	}

	b.Run("IntSlice", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = IntSlice(args, "pages")
		}
	})

	b.Run("StringSlice", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = StringSlice(args, "inputs")
		}
	})

	b.Run("OptionalInt", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			_, _ = OptionalInt(args, "dpi", 0)
		}
	})
}
