package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmcp/internal/logging"
)

// HTTPServer serves the MCP SSE transport together with the callback,
// health, catalog, and metrics routes.
type HTTPServer struct {
	sc         *ServerContext
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// NewHTTPServer builds the SSE listener around mcpServer.
func NewHTTPServer(sc *ServerContext, mcpServer *mcpserver.MCPServer) *HTTPServer {
	return &HTTPServer{
		sc:        sc,
		mcpServer: mcpServer,
	}
}

// Handler builds the route mux. Split out so tests can drive it
// without a listener.
func (s *HTTPServer) Handler() http.Handler {
	sseServer := mcpserver.NewSSEServer(s.mcpServer,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/message"),
	)

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer)
	mux.Handle("/message", sseServer)
	mux.HandleFunc("/health", HealthHandler(s.sc))
	mux.HandleFunc("/tools", ToolCatalogHandler(s.sc))
	mux.HandleFunc("/oauth2callback", CallbackHandler(s.sc.Logger()))

	return mux
}

// Start listens on addr and serves until Shutdown or a fatal error.
// metricsHandler is optional; when nil the /metrics route is absent.
// No WriteTimeout on purpose: SSE responses stay open indefinitely.
func (s *HTTPServer) Start(addr string, metricsHandler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	cfg := s.sc.Config()
	s.sc.Logger().Info("starting SSE server",
		logging.Operation("serve"),
		slog.String("addr", addr))

	if cfg != nil && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		return s.httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains the HTTP listener.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// CallbackServer is the minimal listener used in stdio mode. The MCP
// session runs over the pipe, but the OAuth redirect still needs an
// HTTP endpoint to land on.
type CallbackServer struct {
	sc         *ServerContext
	httpServer *http.Server
}

// NewCallbackServer creates the stdio-mode callback listener.
func NewCallbackServer(sc *ServerContext) *CallbackServer {
	return &CallbackServer{sc: sc}
}

// Start serves the callback route on addr until Shutdown.
func (s *CallbackServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", CallbackHandler(s.sc.Logger()))
	mux.HandleFunc("/health", HealthHandler(s.sc))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.sc.Logger().Info("starting OAuth callback server",
		logging.Operation("serve"),
		slog.String("addr", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("callback server failed: %w", err)
	}
	return nil
}

// Shutdown drains the callback listener.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
