package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/server"
	"github.com/teemow/calmcp/internal/store"
	"github.com/teemow/calmcp/internal/tools/calendar_tools"
)

// cleanupInterval is how often refreshless expired records are purged
// while the server runs.
const cleanupInterval = time.Hour

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		transport string
		httpAddr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP calendar server",
		Long: `Start the Model Context Protocol (MCP) server that exposes Google
Calendar tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP

Required environment variables (a .env file is also read):
  GOOGLE_PUBLIC_API_KEY   API key for read-only calendar queries
  GOOGLE_CLIENT_ID        OAuth client ID for calendar writes
  GOOGLE_CLIENT_SECRET    OAuth client secret for calendar writes
  DATABASE_URL            Postgres DSN for the credential store

In stdio mode a small HTTP listener still runs so the OAuth redirect
has somewhere to land. All logging goes to stderr; stdout belongs to
the MCP transport.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("transport") {
				cfg.Transport = transport
			}
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport type: stdio or sse. Can also use TRANSPORT env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address. Can also use HTTP_ADDR or PORT env vars.")

	return cmd
}

func runServe(cfg *config.Config, debugMode bool) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewStderrLogger(debugMode)

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	tokenStore := store.NewTokenStore(db, logger, cfg.TokenDefaultTTL)

	// Purge once at startup, then hourly while the server runs.
	tokenStore.CleanupExpiredTokens(shutdownCtx)
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-shutdownCtx.Done():
				return
			case <-ticker.C:
				tokenStore.CleanupExpiredTokens(shutdownCtx)
			}
		}
	}()

	oauthConf := google.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	manager := google.NewManager(oauthConf, tokenStore, logger)
	manager.LoadInitialCredentials(shutdownCtx, cfg.DefaultUserID)

	reader, err := calendar.NewReadClient(shutdownCtx, cfg.GoogleAPIKey, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create calendar read client: %w", err)
	}

	writerFor := func(ctx context.Context, userID string) (calendar.EventInserter, error) {
		ts, err := manager.TokenSource(ctx, userID)
		if err != nil {
			return nil, err
		}
		return calendar.NewWriteClient(ctx, ts, cfg.RequestTimeout)
	}

	serverContext := server.NewServerContext(shutdownCtx, cfg, logger, manager, tokenStore, reader, writerFor, db)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("calmcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, serverContext)
	case config.TransportSSE:
		return runSSEServer(shutdownCtx, mcpSrv, serverContext)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)",
			cfg.Transport, config.TransportStdio, config.TransportSSE)
	}
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	// The callback listener runs beside the pipe so the OAuth redirect
	// still works without the SSE surface.
	callbackServer := server.NewCallbackServer(sc)
	callbackDone := make(chan error, 1)
	go func() {
		defer close(callbackDone)
		if err := callbackServer.Start(sc.Config().HTTPAddr); err != nil {
			callbackDone <- err
		}
	}()

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serverDone:
	case serveErr = <-callbackDone:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := callbackServer.Shutdown(shutdownCtx); err != nil {
		sc.Logger().Error("error shutting down callback server", logging.Err(err))
	}

	if serveErr != nil {
		return fmt.Errorf("server stopped with error: %w", serveErr)
	}
	return nil
}

func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	provider, err := instrumentation.NewProvider(version)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			sc.Logger().Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	toolMetrics, err := instrumentation.NewToolMetrics(provider.Meter())
	if err != nil {
		return fmt.Errorf("failed to create tool metrics: %w", err)
	}
	sc.SetMetrics(toolMetrics)

	httpServer := server.NewHTTPServer(sc, mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(sc.Config().HTTPAddr, provider.Handler()); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		sc.Logger().Info("shutdown signal received, stopping SSE server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down SSE server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("SSE server stopped with error: %w", err)
		}
	}

	return nil
}
