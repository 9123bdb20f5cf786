package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fastmail-mcp/internal/instrumentation"
	"github.com/teemow/fastmail-mcp/internal/mcp/oauth"
)

// OAuthHTTPServer serves the MCP endpoint over streamable HTTP behind
// bearer token authentication, alongside the OAuth discovery surface
// that lets Claude.ai find and use Cognito as the authorization server.
type OAuthHTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	oauthHandler     *oauth.Handler
	healthChecker    *HealthChecker
	metrics          *instrumentation.Metrics
	httpServer       *http.Server
	disableStreaming bool
	logger           *slog.Logger
}

// OAuthHTTPServerConfig holds the dependencies for the HTTP server.
type OAuthHTTPServerConfig struct {
	MCPServer     *mcpserver.MCPServer
	OAuthHandler  *oauth.Handler
	HealthChecker *HealthChecker
	// Metrics is optional; when nil, HTTP requests are not recorded.
	Metrics *instrumentation.Metrics
	// DisableStreaming forces plain JSON responses on the MCP endpoint
	// for clients that cannot consume SSE streams.
	DisableStreaming bool
	Logger           *slog.Logger
}

// NewOAuthHTTPServer creates a new OAuth-enabled HTTP server for MCP.
func NewOAuthHTTPServer(cfg OAuthHTTPServerConfig) (*OAuthHTTPServer, error) {
	if cfg.MCPServer == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if cfg.OAuthHandler == nil {
		return nil, fmt.Errorf("OAuth handler is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &OAuthHTTPServer{
		mcpServer:        cfg.MCPServer,
		oauthHandler:     cfg.OAuthHandler,
		healthChecker:    cfg.HealthChecker,
		metrics:          cfg.Metrics,
		disableStreaming: cfg.DisableStreaming,
		logger:           cfg.Logger,
	}, nil
}

// Handler builds the full HTTP handler: discovery routes, health
// endpoints, and the token-protected MCP endpoint, with path
// normalization applied in front of routing.
func (s *OAuthHTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// OAuth discovery and registration endpoints (RFC 8414, 9728, 7591)
	s.oauthHandler.RegisterRoutes(mux)

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	// Streamable HTTP MCP endpoint behind bearer authentication
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(oauth.DefaultMCPPath),
	}
	if s.disableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	verifier := s.oauthHandler.Verifier()
	mux.Handle(oauth.DefaultMCPPath, verifier.Middleware(streamable, s.oauthHandler.ResourceMetadataURL()))

	// Slash normalization runs before routing so naively joined
	// well-known URLs still resolve.
	return oauth.NormalizeSlashes(s.withHTTPMetrics(mux))
}

// Start starts the OAuth-enabled HTTP server on addr and blocks until
// the server stops.
func (s *OAuthHTTPServer) Start(addr string) error {
	// Validate HTTPS requirement for OAuth 2.1
	// Exception: localhost is allowed to use HTTP for development
	if err := validateHTTPSRequirement(s.oauthHandler.ResourceMetadataURL()); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// withHTTPMetrics records request counts and durations for every route.
func (s *OAuthHTTPServer) withHTTPMetrics(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through to the underlying writer so SSE streaming keeps
// working behind the metrics wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1)
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	// Parse URL to properly validate scheme and host
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	// Allow HTTP only for loopback addresses
	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
