package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const defaultMetricExportInterval = 60 * time.Second

var (
	metricsMutex        sync.RWMutex
	globalMeterProvider *sdkmetric.MeterProvider
	metricsEnabled      bool

	toolCallsCounter      metric.Int64Counter
	toolDurationHistogram metric.Float64Histogram
	toolErrorsCounter     metric.Int64Counter
)

// InitMetrics installs an OTLP/HTTP meter provider under the same conditions as InitTracer.
func InitMetrics(logger *logrus.Logger, serviceName, serviceVersion string) (func() error, error) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	noopShutdown := func() error { return nil }

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" || os.Getenv("OTEL_SDK_DISABLED") == "true" {
		metricsEnabled = false
		return noopShutdown, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlpmetrichttp.New(ctx)
	if err != nil {
		logger.WithError(err).Warn("OTEL Metrics: Failed to create exporter, metrics disabled")
		metricsEnabled = false
		return noopShutdown, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(defaultMetricExportInterval))),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	if err := initInstruments(mp.Meter(instrumentationName)); err != nil {
		logger.WithError(err).Warn("OTEL Metrics: Failed to create instruments, metrics disabled")
		metricsEnabled = false
		return noopShutdown, err
	}

	globalMeterProvider = mp
	metricsEnabled = true
	logger.WithField("endpoint", endpoint).Info("OTEL Metrics: Meter initialised")

	return func() error {
		metricsMutex.Lock()
		defer metricsMutex.Unlock()

		if globalMeterProvider == nil {
			return nil
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := globalMeterProvider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
		globalMeterProvider = nil
		metricsEnabled = false
		return nil
	}, nil
}

func initInstruments(meter metric.Meter) error {
	var err error

	toolCallsCounter, err = meter.Int64Counter("mcp.tool.calls",
		metric.WithDescription("Number of tool invocations"),
		metric.WithUnit("{call}"))
	if err != nil {
		return fmt.Errorf("failed to create tool calls counter: %w", err)
	}

	toolDurationHistogram, err = meter.Float64Histogram("mcp.tool.duration",
		metric.WithDescription("Tool execution time"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("failed to create tool duration histogram: %w", err)
	}

	toolErrorsCounter, err = meter.Int64Counter("mcp.tool.errors",
		metric.WithDescription("Number of failed tool invocations by error kind"),
		metric.WithUnit("{error}"))
	if err != nil {
		return fmt.Errorf("failed to create tool errors counter: %w", err)
	}

	return nil
}

// IsMetricsEnabled returns true if metrics are being exported.
func IsMetricsEnabled() bool {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return metricsEnabled
}

// RecordToolCall records one invocation and its duration.
func RecordToolCall(ctx context.Context, toolName string, success bool, durationMs float64) {
	if !IsMetricsEnabled() {
		return
	}

	result := "success"
	if !success {
		result = "error"
	}

	toolCallsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrToolName, toolName),
		attribute.String("result", result),
	))
	toolDurationHistogram.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String(AttrToolName, toolName),
	))
}

// RecordToolError records a failed invocation under its error kind.
func RecordToolError(ctx context.Context, toolName string, err error) {
	if !IsMetricsEnabled() || err == nil {
		return
	}

	toolErrorsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrToolName, toolName),
		attribute.String(AttrErrorType, CategoriseToolError(err)),
	))
}

// CategoriseToolError maps an error to a short, metric-friendly kind.
func CategoriseToolError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrValidation):
		return "validation"
	case errors.Is(err, errs.ErrDependencyMissing):
		return "dependency_missing"
	case errors.Is(err, errs.ErrExternal):
		return "external"
	case errors.Is(err, errs.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, errs.ErrDecode):
		return "decode"
	case errors.Is(err, errs.ErrUnsupportedInput):
		return "unsupported_input"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
