package server

import (
	"context"
	"sync"

	"github.com/teemow/fastmail-mcp/internal/instrumentation"
	"github.com/teemow/fastmail-mcp/internal/jmap"
)

// ServerContext holds the shared dependencies for the MCP server.
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	jmapClient *jmap.Client
	metrics    *instrumentation.Metrics
	mu         sync.RWMutex
	shutdown   bool
}

// NewServerContext creates a new server context owning the JMAP client.
func NewServerContext(ctx context.Context, client *jmap.Client) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		jmapClient: client,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// JMAPClient returns the JMAP client, or nil when none is configured.
func (sc *ServerContext) JMAPClient() *jmap.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.jmapClient
}

// SetJMAPClient replaces the JMAP client. Used by tests to inject a
// client pointed at a fake server.
func (sc *ServerContext) SetJMAPClient(client *jmap.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.jmapClient = client
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder for tool and JMAP instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
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
