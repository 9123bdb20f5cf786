package oauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMCPPath is the path the MCP endpoint is mounted on.
const DefaultMCPPath = "/mcp"

// Config holds the configuration for the OAuth discovery surface and
// token verification.
type Config struct {
	// BaseURL is this server's externally reachable base URL. It is
	// advertised as the authorization server in protected resource
	// metadata, so the AS metadata proxy must override the upstream
	// issuer with it.
	BaseURL string

	// IssuerURL is the Cognito user pool issuer URL, e.g.
	// https://cognito-idp.eu-central-1.amazonaws.com/<pool-id>
	IssuerURL string

	// JWKSURI is the signing key set URL. Defaults to the Cognito
	// convention {IssuerURL}/.well-known/jwks.json.
	JWKSURI string

	// Audience is an optional expected audience claim. Left empty in the
	// default deployment: Cognito access tokens carry client_id, not aud.
	Audience string

	// MCPPath is the mount path of the MCP endpoint (default: /mcp).
	MCPPath string

	// PublicClientID is the Cognito app client handed out to clients
	// registering with token_endpoint_auth_method "none".
	PublicClientID string

	// ConfidentialClientID is the Cognito app client handed out for any
	// other auth method.
	ConfidentialClientID string

	// ConfidentialClientSecret is included in registration responses for
	// confidential clients when configured.
	ConfidentialClientSecret string

	// Logger for structured logging (optional, uses default if not provided).
	Logger *slog.Logger

	// HTTPClient is used for the upstream metadata fetch and JWKS
	// refresh. Defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
}

// normalizeBaseURL strips any trailing slashes so concatenating a path
// never produces a doubled separator.
func normalizeBaseURL(base string) string {
	return strings.TrimRight(base, "/")
}

// validate checks required fields and applies defaults in place.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer URL is required")
	}
	if c.PublicClientID == "" {
		return fmt.Errorf("public client ID is required")
	}
	if c.ConfidentialClientID == "" {
		return fmt.Errorf("confidential client ID is required")
	}

	c.BaseURL = normalizeBaseURL(c.BaseURL)
	c.IssuerURL = strings.TrimSuffix(c.IssuerURL, "/")
	if c.JWKSURI == "" {
		c.JWKSURI = c.IssuerURL + "/.well-known/jwks.json"
	}
	if c.MCPPath == "" {
		c.MCPPath = DefaultMCPPath
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return nil
}
