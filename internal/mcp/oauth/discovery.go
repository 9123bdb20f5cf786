package oauth

import (
	"net/http"
	"slices"
)

// Metadata field values Cognito supports but does not advertise (or that
// must point at this server instead of Cognito).
var (
	// SupportedCodeChallengeMethods lists the PKCE methods advertised.
	// Security: only S256; "plain" violates OAuth 2.1.
	SupportedCodeChallengeMethods = []string{"S256"}

	// SupportedGrantTypes are the grant types advertised.
	SupportedGrantTypes = []string{"authorization_code", "refresh_token"}

	// SupportedTokenAuthMethods are the token endpoint auth methods advertised.
	SupportedTokenAuthMethods = []string{"client_secret_basic", "client_secret_post", "none"}

	// SupportedResponseTypes are the response types a registered client gets.
	SupportedResponseTypes = []string{"code"}
)

// AugmentASMetadata produces RFC 8414 authorization server metadata from
// an upstream OIDC discovery document. It fills in the fields Cognito
// omits and overrides the issuer with this server's base URL: protected
// resource metadata advertises this server as the authorization server,
// and RFC 8414 requires issuer to match the metadata-serving origin.
//
// The transformation is pure and idempotent: augmenting an already
// augmented document is a no-op.
func AugmentASMetadata(upstream Document, baseURL string) Document {
	base := normalizeBaseURL(baseURL)

	doc := upstream.Clone()
	doc["issuer"] = base
	doc["registration_endpoint"] = base + "/oauth/register"
	doc["code_challenge_methods_supported"] = SupportedCodeChallengeMethods
	doc["grant_types_supported"] = SupportedGrantTypes
	doc["token_endpoint_auth_methods_supported"] = SupportedTokenAuthMethods

	responseTypes := doc.StringSlice("response_types_supported")
	if !slices.Contains(responseTypes, "code") {
		responseTypes = append(responseTypes, "code")
	}
	doc["response_types_supported"] = responseTypes

	return doc
}

// ServeAuthorizationServerMetadata serves the augmented authorization
// server metadata (RFC 8414). Claude.ai fetches this after reading the
// protected resource metadata, so the upstream fetch failure mode is a
// 502 rather than a silently degraded document.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upstream, err := h.cache.ProviderMetadata(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch provider metadata", "error", err)
		h.writeError(w, "server_error", "failed to fetch provider metadata", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, AugmentASMetadata(upstream, h.config.BaseURL))
}
