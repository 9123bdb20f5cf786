package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fastmail-mcp/internal/instrumentation"
	"github.com/teemow/fastmail-mcp/internal/jmap"
	"github.com/teemow/fastmail-mcp/internal/logging"
	"github.com/teemow/fastmail-mcp/internal/mcp/oauth"
	"github.com/teemow/fastmail-mcp/internal/server"
	"github.com/teemow/fastmail-mcp/internal/tools/mail_tools"
)

// serverInstructions is sent to MCP clients during initialization.
const serverInstructions = "You have access to the user's Fastmail email. " +
	"Use these tools to read and search their email. Start with list_mailboxes " +
	"to see available folders, then use list_emails or search_emails to find " +
	"specific messages. Use get_email for full content and get_thread for " +
	"conversation context."

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		disableStreaming bool
		baseURL          string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing read-only
Fastmail mailbox tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with OAuth bearer authentication

Mailbox Configuration:
  FASTMAIL_API_TOKEN env var (required): Fastmail API token
  FASTMAIL_BASE_URL env var (optional): JMAP server base URL
    (default: https://api.fastmail.com)

OAuth Configuration (streamable-http transport only):
  Base URL (required for deployed instances):
    --base-url https://your-domain.com OR MCP_BASE_URL env var
    Auto-detected for localhost (development only)

  Authorization server (required):
    COGNITO_ISSUER_URL env var: Cognito user pool issuer URL
    COGNITO_JWKS_URI env var (optional): signing key set URL, defaults to
      the issuer's /.well-known/jwks.json
    COGNITO_AUDIENCE env var (optional): expected audience claim. Leave
      unset for Cognito access tokens, which carry client_id instead.

  Client registration:
    OAUTH_PUBLIC_CLIENT_ID env var: pre-provisioned public client handed
      out to clients registering with token_endpoint_auth_method "none"
    OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET env vars (optional):
      pre-provisioned confidential client for all other clients`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build metrics config
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, httpAddr, disableStreaming, baseURL, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// newJMAPClientFromEnv builds the JMAP client from environment variables.
func newJMAPClientFromEnv(logger *slog.Logger) (*jmap.Client, error) {
	token := os.Getenv("FASTMAIL_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("FASTMAIL_API_TOKEN environment variable is required")
	}
	return jmap.NewClient(os.Getenv("FASTMAIL_BASE_URL"), token, jmap.WithLogger(logger))
}

func runServe(transport string, debugMode bool, httpAddr string, disableStreaming bool, baseURL string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(debugMode)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				logger.Error("error during instrumentation shutdown", logging.Err(err))
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	// Create the JMAP client for the configured mailbox
	jmapClient, err := newJMAPClientFromEnv(logger)
	if err != nil {
		return err
	}

	// Create server context
	serverContext := server.NewServerContext(shutdownCtx, jmapClient)

	// Set metrics on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				logger.Error("error during server context shutdown", logging.Err(err))
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("fastmail-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions(serverInstructions),
	)

	// Register all tools
	if err := mail_tools.RegisterMailTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register mail tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, disableStreaming, baseURL, metricsConfig, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// resolveBaseURL determines the public base URL from the flag, the
// MCP_BASE_URL environment variable, or localhost auto-detection.
func resolveBaseURL(baseURL, addr string, logger *slog.Logger) string {
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		// Fall back to auto-detection for local development
		baseURL = fmt.Sprintf("http://%s", addr)
		if addr != "" && addr[0] == ':' {
			baseURL = fmt.Sprintf("http://localhost%s", addr)
		}
		logger.Info("no base URL configured, using auto-detected", "base_url", baseURL)
		logger.Info("for deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		logger.Info("using configured base URL", "base_url", baseURL)
	}
	return baseURL
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string, disableStreaming bool, baseURL string, metricsConfig MetricsConfig, instrProvider *instrumentation.Provider, logger *slog.Logger) error {
	baseURL = resolveBaseURL(baseURL, addr, logger)

	issuerURL := os.Getenv("COGNITO_ISSUER_URL")
	if issuerURL == "" {
		return fmt.Errorf("COGNITO_ISSUER_URL environment variable is required for streamable-http transport")
	}

	// Create OAuth handler
	oauthHandler, err := oauth.NewHandler(ctx, oauth.Config{
		BaseURL:                  baseURL,
		IssuerURL:                issuerURL,
		JWKSURI:                  os.Getenv("COGNITO_JWKS_URI"),
		Audience:                 os.Getenv("COGNITO_AUDIENCE"),
		PublicClientID:           os.Getenv("OAUTH_PUBLIC_CLIENT_ID"),
		ConfidentialClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		ConfidentialClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		Logger:                   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)

	var metrics *instrumentation.Metrics
	if instrProvider != nil && instrProvider.Enabled() {
		metrics = instrProvider.Metrics()
	}

	oauthServer, err := server.NewOAuthHTTPServer(server.OAuthHTTPServerConfig{
		MCPServer:        mcpSrv,
		OAuthHandler:     oauthHandler,
		HealthChecker:    healthChecker,
		Metrics:          metrics,
		DisableStreaming: disableStreaming,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	logger.Info("streamable HTTP server with OAuth authentication starting",
		"addr", addr,
		"mcp_endpoint", oauth.DefaultMCPPath,
		"authorization_server", issuerURL)
	if metricsConfig.Enabled {
		logger.Info("metrics endpoint enabled", "addr", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := oauthServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := oauthServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
