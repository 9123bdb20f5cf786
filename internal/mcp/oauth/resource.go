package oauth

import (
	"net/http"
)

// WellKnownProtectedResource is the root protected resource metadata path.
// Claude.ai requests this path without the MCP mount suffix, while the
// MCP convention appends the mount path; both are served.
const WellKnownProtectedResource = "/.well-known/oauth-protected-resource"

// resourceMetadataMaxAge allows clients to cache the (static) document.
const resourceMetadataMaxAge = "public, max-age=3600"

// ResourceMetadata builds the protected resource metadata document
// (RFC 9728) advertised for the MCP endpoint. The base URL is normalized
// so the resource identifier never contains a doubled path separator.
func (h *Handler) ResourceMetadata() ProtectedResourceMetadata {
	base := normalizeBaseURL(h.config.BaseURL)
	return ProtectedResourceMetadata{
		Resource:               base + h.config.MCPPath,
		AuthorizationServers:   []string{base},
		ScopesSupported:        []string{},
		BearerMethodsSupported: []string{"header"},
	}
}

// ServeProtectedResourceMetadata serves the protected resource metadata.
// Registered at both the root well-known path and the mount-suffixed one.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Cache-Control", resourceMetadataMaxAge)
	h.writeJSON(w, http.StatusOK, h.ResourceMetadata())
}
