package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Handler serves the OAuth discovery and registration surface that lets
// Claude.ai connect to the MCP endpoint with Cognito as the identity
// provider. It does not implement an authorization server: the
// authorization and token endpoints in the advertised metadata remain
// Cognito's own.
type Handler struct {
	config   Config
	cache    *MetadataCache
	verifier *TokenVerifier
	logger   *slog.Logger
}

// NewHandler validates cfg and constructs the discovery handler along
// with its metadata cache and token verifier. ctx bounds the JWKS
// refresh goroutine's lifetime.
func NewHandler(ctx context.Context, cfg Config) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid OAuth configuration: %w", err)
	}

	verifier, err := NewTokenVerifier(ctx, cfg.IssuerURL, cfg.JWKSURI, cfg.Audience, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	return &Handler{
		config:   cfg,
		cache:    NewMetadataCache(cfg.IssuerURL, cfg.HTTPClient, cfg.Logger),
		verifier: verifier,
		logger:   cfg.Logger,
	}, nil
}

// Verifier returns the token verifier for protecting the MCP endpoint.
func (h *Handler) Verifier() *TokenVerifier {
	return h.verifier
}

// ResourceMetadataURL is the absolute URL of the root protected resource
// metadata document, used in WWW-Authenticate challenges.
func (h *Handler) ResourceMetadataURL() string {
	return normalizeBaseURL(h.config.BaseURL) + WellKnownProtectedResource
}

// Route pairs a path with its handler for registration on a mux.
type Route struct {
	Path    string
	Handler http.HandlerFunc
}

// Routes returns the discovery and registration endpoints. The protected
// resource metadata is mounted both at the root well-known path (which
// Claude.ai requests) and with the MCP mount path appended (the MCP
// convention for path-scoped resources).
func (h *Handler) Routes() []Route {
	return []Route{
		{Path: WellKnownProtectedResource, Handler: h.ServeProtectedResourceMetadata},
		{Path: WellKnownProtectedResource + h.config.MCPPath, Handler: h.ServeProtectedResourceMetadata},
		{Path: "/.well-known/oauth-authorization-server", Handler: h.ServeAuthorizationServerMetadata},
		{Path: "/.well-known/oauth-authorization-server" + h.config.MCPPath, Handler: h.ServeAuthorizationServerMetadata},
		{Path: "/oauth/register", Handler: h.ServeClientRegistration},
	}
}

// RegisterRoutes attaches all discovery routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Path, route.Handler)
	}
}

func setCORSHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code, description string, status int) {
	h.writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}
