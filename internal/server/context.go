package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/config"
	"github.com/teemow/calmcp/internal/google"
	"github.com/teemow/calmcp/internal/instrumentation"
	"github.com/teemow/calmcp/internal/store"
)

// WriterFactory builds a calendar write client for a user's current
// credentials. Called per write so a refreshed token is always used.
type WriterFactory func(ctx context.Context, userID string) (calendar.EventInserter, error)

// ServerContext holds the collaborators every tool handler needs.
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.Config
	logger    *slog.Logger
	manager   *google.Manager
	tokens    *store.TokenStore
	reader    calendar.EventLister
	writerFor WriterFactory
	db        *gorm.DB

	mu       sync.RWMutex
	metrics  *instrumentation.ToolMetrics
	shutdown bool
}

// NewServerContext creates the shared server context. db may be nil in
// tests; health checks then skip the database probe.
func NewServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, manager *google.Manager, tokens *store.TokenStore, reader calendar.EventLister, writerFor WriterFactory, db *gorm.DB) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		cfg:       cfg,
		logger:    logger,
		manager:   manager,
		tokens:    tokens,
		reader:    reader,
		writerFor: writerFor,
		db:        db,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Manager returns the credential lifecycle manager.
func (sc *ServerContext) Manager() *google.Manager {
	return sc.manager
}

// TokenStore returns the credential record store.
func (sc *ServerContext) TokenStore() *store.TokenStore {
	return sc.tokens
}

// Reader returns the read-only calendar client.
func (sc *ServerContext) Reader() calendar.EventLister {
	return sc.reader
}

// WriterFor builds a calendar write client for userID.
func (sc *ServerContext) WriterFor(ctx context.Context, userID string) (calendar.EventInserter, error) {
	if sc.writerFor == nil {
		return nil, fmt.Errorf("no calendar writer configured")
	}
	return sc.writerFor(ctx, userID)
}

// SetMetrics attaches tool metrics. Optional; handlers tolerate nil.
func (sc *ServerContext) SetMetrics(m *instrumentation.ToolMetrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the tool metrics, possibly nil.
func (sc *ServerContext) Metrics() *instrumentation.ToolMetrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// PingDatabase probes database connectivity with a short timeout.
func (sc *ServerContext) PingDatabase(ctx context.Context) error {
	if sc.db == nil {
		return fmt.Errorf("no database configured")
	}
	sqlDB, err := sc.db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

// IsShutdown returns whether the server context has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
