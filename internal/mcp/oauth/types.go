package oauth

// Document is an OAuth/OIDC discovery document. The upstream provider's
// document is passed through with unknown keys preserved, so it is kept
// as a generic mapping rather than a fixed struct.
type Document map[string]any

// Clone returns a shallow copy of the document. Values are shared;
// augmentation only replaces top-level keys.
func (d Document) Clone() Document {
	out := make(Document, len(d)+8)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StringSlice returns the value of key as a []string, converting from the
// []any form produced by JSON decoding. Returns nil if the key is absent
// or not a list of strings.
func (d Document) StringSlice(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

// ProtectedResourceMetadata is OAuth 2.0 Protected Resource Metadata
// (RFC 9728).
type ProtectedResourceMetadata struct {
	// Resource is the identifier for the protected resource.
	Resource string `json:"resource"`

	// AuthorizationServers lists the authorization servers that can issue
	// tokens for this resource.
	AuthorizationServers []string `json:"authorization_servers"`

	// ScopesSupported lists the scopes understood by this resource. Empty
	// (but present) for this single-user deployment: access is
	// unrestricted once the bearer token verifies.
	ScopesSupported []string `json:"scopes_supported"`

	// BearerMethodsSupported lists the ways Bearer tokens can be sent
	// (RFC 6750).
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// ClientRegistrationRequest is the subset of RFC 7591 client metadata the
// registration responder reads. Unknown fields are ignored.
type ClientRegistrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	ClientName              string   `json:"client_name"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// ClientRegistrationResponse is the RFC 7591 registration response. No
// registration state exists behind it; the credentials are the
// pre-provisioned Cognito app clients.
type ClientRegistrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// ErrorResponse is an OAuth error response body.
type ErrorResponse struct {
	// Error is the error code.
	Error string `json:"error"`

	// ErrorDescription provides additional information.
	ErrorDescription string `json:"error_description,omitempty"`
}
