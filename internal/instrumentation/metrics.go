package instrumentation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/teemow/calmcp"

// Provider owns the meter provider and the Prometheus registry it
// exports into.
type Provider struct {
	registry      *prometheus.Registry
	meterProvider *sdkmetric.MeterProvider
}

// NewProvider creates a metrics provider backed by a dedicated
// Prometheus registry.
func NewProvider(serviceVersion string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "calmcp"),
		attribute.String("service.version", serviceVersion),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	return &Provider{
		registry:      registry,
		meterProvider: meterProvider,
	}, nil
}

// Meter returns the service meter.
func (p *Provider) Meter() metric.Meter {
	return p.meterProvider.Meter(meterName)
}

// Handler returns the /metrics HTTP handler.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}

// ToolMetrics records MCP tool invocations.
type ToolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolMetrics creates the tool-call instruments on meter.
func NewToolMetrics(meter metric.Meter) (*ToolMetrics, error) {
	calls, err := meter.Int64Counter("mcp_tool_calls_total",
		metric.WithDescription("Number of MCP tool invocations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call counter: %w", err)
	}

	duration, err := meter.Float64Histogram("mcp_tool_duration_seconds",
		metric.WithDescription("Duration of MCP tool invocations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tool duration histogram: %w", err)
	}

	return &ToolMetrics{calls: calls, duration: duration}, nil
}

// Record counts one tool invocation with its outcome and duration.
// Safe on a nil receiver so callers never need a metrics-enabled check.
func (m *ToolMetrics) Record(ctx context.Context, tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
