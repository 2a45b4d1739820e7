package telemetry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// maxAttributeSize bounds the sanitised argument JSON attached to a span.
const maxAttributeSize = 4096

var (
	globalMutex          sync.RWMutex
	globalTracer         trace.Tracer
	globalTracerProvider *sdktrace.TracerProvider
	tracingEnabled       bool
	disabledTools        map[string]bool
)

// otelErrorHandler routes SDK errors to the log file; stderr must stay clean in stdio mode.
type otelErrorHandler struct {
	logger *logrus.Logger
}

func (h *otelErrorHandler) Handle(err error) {
	if err == nil {
		return
	}
	h.logger.WithError(err).Debug("OTEL: SDK error occurred")
}

// InitTracer installs an OTLP/HTTP tracer when OTEL_EXPORTER_OTLP_ENDPOINT is set and a noop
// tracer otherwise. The returned shutdown function is always safe to call.
func InitTracer(logger *logrus.Logger, serviceName, serviceVersion string) (func() error, error) {
	globalMutex.Lock()
	defer globalMutex.Unlock()

	noopShutdown := func() error { return nil }
	disabledTools = parseDisabledTools(os.Getenv("MCP_TRACING_DISABLED_TOOLS"))

	if strings.EqualFold(os.Getenv("OTEL_SDK_DISABLED"), "true") {
		logger.Debug("OTEL: Explicitly disabled via OTEL_SDK_DISABLED")
		useNoop()
		return noopShutdown, nil
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		logger.Debug("OTEL: OTEL_EXPORTER_OTLP_ENDPOINT not set, using noop tracer")
		useNoop()
		return noopShutdown, nil
	}

	otel.SetErrorHandler(&otelErrorHandler{logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		logger.WithError(err).Warn("OTEL: Failed to create exporter, falling back to noop tracer")
		useNoop()
		return noopShutdown, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	globalTracer = tp.Tracer(instrumentationName)
	globalTracerProvider = tp
	tracingEnabled = true
	logger.WithField("endpoint", endpoint).Info("OTEL: Tracer initialised")

	return func() error {
		globalMutex.Lock()
		defer globalMutex.Unlock()

		if globalTracerProvider == nil {
			return nil
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := globalTracerProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		globalTracerProvider = nil
		tracingEnabled = false
		return nil
	}, nil
}

func useNoop() {
	globalTracer = noop.NewTracerProvider().Tracer(instrumentationName)
	globalTracerProvider = nil
	tracingEnabled = false
}

func newResource(serviceName, serviceVersion string) *resource.Resource {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		serviceName = name
	}
	own := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	)
	merged, err := resource.Merge(resource.Default(), own)
	if err != nil {
		return own
	}
	return merged
}

// GetTracer returns the installed tracer, or a noop tracer before InitTracer.
func GetTracer() trace.Tracer {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	if globalTracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return globalTracer
}

// IsEnabled returns true if spans are being exported.
func IsEnabled() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return tracingEnabled
}

// IsToolTracingDisabled reports whether MCP_TRACING_DISABLED_TOOLS names the tool.
func IsToolTracingDisabled(toolName string) bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return disabledTools[toolName]
}

// StartToolSpan starts the span for one tool invocation. The caller must end it with EndToolSpan.
func StartToolSpan(ctx context.Context, toolName, operationID string, args map[string]any) (context.Context, trace.Span) {
	if !IsEnabled() || IsToolTracingDisabled(toolName) {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := GetTracer().Start(ctx, SpanPrefixTool+toolName, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String(AttrToolName, toolName),
		attribute.String(AttrOperationID, operationID),
	)

	sanitised := SanitiseArgumentsJSON(args)
	if len(sanitised) > maxAttributeSize {
		span.SetAttributes(
			attribute.String(AttrToolArguments, TruncateString(sanitised, maxAttributeSize)),
			attribute.Bool(AttrToolTruncated, true),
		)
	} else {
		span.SetAttributes(attribute.String(AttrToolArguments, sanitised))
	}

	return ctx, span
}

// EndToolSpan records the outcome on span and ends it.
func EndToolSpan(span trace.Span, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(
			attribute.Bool(AttrToolSuccess, false),
			attribute.String(AttrToolError, err.Error()),
			attribute.String(AttrErrorType, CategoriseToolError(err)),
		)
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Bool(AttrToolSuccess, true))
	}

	span.End()
}

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
