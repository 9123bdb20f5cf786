// Package server provides the MCP server context, health checks, and the
// OAuth-enabled HTTP server for the fastmail-mcp application.
//
// # Key Components
//
// ServerContext holds the shared JMAP client and metrics recorder for
// tool handlers.
//
// OAuthHTTPServer serves the streamable HTTP MCP endpoint behind bearer
// token authentication and exposes the OAuth discovery surface:
//   - Authorization Server Metadata (RFC 8414), proxied from Cognito
//   - Protected Resource Metadata (RFC 9728)
//   - Dynamic Client Registration (RFC 7591), answered with
//     pre-provisioned Cognito app client credentials
//
// HealthChecker provides /healthz and /readyz endpoints for Kubernetes
// probes, and MetricsServer exposes Prometheus metrics on a dedicated
// port.
//
// # Security
//
// HTTPS is required for any non-loopback base URL (OAuth 2.1). Bearer
// tokens on the MCP endpoint are verified as Cognito-signed JWTs; all
// other authorization flows happen directly against Cognito.
package server
