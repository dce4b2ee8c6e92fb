package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/logging"
)

func newTestContext(t *testing.T) *ServerContext {
	t.Helper()
	cfg := &config.Config{Transport: "sse", HTTPAddr: ":0"}
	sc := NewServerContext(context.Background(), cfg, logging.NewStderrLogger(false), nil, nil, nil, nil, nil)
	t.Cleanup(func() {
		require.NoError(t, sc.Shutdown())
	})
	return sc
}

func TestHealthHandlerWithoutDatabase(t *testing.T) {
	sc := newTestContext(t)

	rec := httptest.NewRecorder()
	HealthHandler(sc)(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "unavailable", resp.Database)
}

func TestToolCatalogHandler(t *testing.T) {
	sc := newTestContext(t)

	rec := httptest.NewRecorder()
	ToolCatalogHandler(sc)(rec, httptest.NewRequest("GET", "/tools", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tools []toolDescriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tools, 3)

	names := make([]string, 0, len(resp.Tools))
	for _, tool := range resp.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "getMyCalendarDataByDate")
	assert.Contains(t, names, "createCalendarEvent")
	assert.Contains(t, names, "setGoogleOAuthTokens")
}

func TestHTTPServerRoutes(t *testing.T) {
	sc := newTestContext(t)
	mcp := mcpserver.NewMCPServer("calmcp-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	srv := NewHTTPServer(sc, mcp)
	handler := srv.Handler()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/tools", http.StatusOK},
		{"/oauth2callback", http.StatusBadRequest},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", tc.path, nil))
		assert.Equal(t, tc.wantStatus, rec.Code, "path %s", tc.path)
	}
}

func TestServerContextShutdownIdempotent(t *testing.T) {
	cfg := &config.Config{Transport: "stdio"}
	sc := NewServerContext(context.Background(), cfg, nil, nil, nil, nil, nil, nil)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Fatal("expected server context to be cancelled after shutdown")
	}
}

func TestWriterForWithoutFactory(t *testing.T) {
	sc := newTestContext(t)

	_, err := sc.WriterFor(context.Background(), "default")
	assert.Error(t, err)
}
