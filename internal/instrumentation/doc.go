// Package instrumentation wires an OpenTelemetry meter to a Prometheus
// exporter and defines the tool-call metrics. Metrics are only served
// in SSE mode; the stdio transport has no HTTP surface to scrape.
package instrumentation
