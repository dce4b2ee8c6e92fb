package instrumentation

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("test")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, p.Shutdown(context.Background()))
	}()

	assert.NotNil(t, p.Meter())
	assert.NotNil(t, p.Handler())
}

func TestToolMetricsRecord(t *testing.T) {
	p, err := NewProvider("test")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, p.Shutdown(context.Background()))
	}()

	m, err := NewToolMetrics(p.Meter())
	require.NoError(t, err)

	m.Record(context.Background(), "getMyCalendarDataByDate", "success", 120*time.Millisecond)
	m.Record(context.Background(), "createCalendarEvent", "error", 30*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	p.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "mcp_tool_calls_total")
	assert.Contains(t, body, "getMyCalendarDataByDate")
	assert.Contains(t, body, "mcp_tool_duration_seconds")
}

func TestToolMetricsNilReceiver(t *testing.T) {
	var m *ToolMetrics
	// Must not panic: metrics are optional in stdio mode
	m.Record(context.Background(), "setGoogleOAuthTokens", "success", time.Millisecond)
}
