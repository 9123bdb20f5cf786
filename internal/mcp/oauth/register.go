package oauth

import (
	"encoding/json"
	"net/http"
)

// Defaults substituted for absent registration body fields. Malformed
// bodies default rather than reject: the same two credential sets are
// handed out regardless, so there is nothing to protect with validation.
const (
	defaultClientName              = "unknown"
	defaultTokenEndpointAuthMethod = "none"
)

// RegisterClient is the credential-selection function behind the DCR
// endpoint. No credentials are minted and nothing is persisted: a public
// auth method ("none") gets the pre-provisioned public app client, and
// anything else gets the confidential app client, with its secret
// included only when one is configured (public clients cannot hold
// secrets). Deterministic for identical input.
func (h *Handler) RegisterClient(req ClientRegistrationRequest) ClientRegistrationResponse {
	if req.ClientName == "" {
		req.ClientName = defaultClientName
	}
	if req.TokenEndpointAuthMethod == "" {
		req.TokenEndpointAuthMethod = defaultTokenEndpointAuthMethod
	}

	resp := ClientRegistrationResponse{
		ClientName:              req.ClientName,
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              SupportedGrantTypes,
		ResponseTypes:           SupportedResponseTypes,
		TokenEndpointAuthMethod: req.TokenEndpointAuthMethod,
	}

	if req.TokenEndpointAuthMethod == "none" {
		resp.ClientID = h.config.PublicClientID
	} else {
		resp.ClientID = h.config.ConfidentialClientID
		resp.ClientSecret = h.config.ConfidentialClientSecret
	}

	return resp
}

// ServeClientRegistration answers dynamic client registration requests
// (RFC 7591) with the pre-provisioned credentials.
func (h *Handler) ServeClientRegistration(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w, "POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body gets the same default treatment as an empty
		// one; the response carries fixed credentials either way.
		h.logger.Debug("unparseable registration body, using defaults", "error", err)
		req = ClientRegistrationRequest{}
	}

	resp := h.RegisterClient(req)
	h.logger.Info("client registration served",
		"client_name", resp.ClientName,
		"token_endpoint_auth_method", resp.TokenEndpointAuthMethod,
		"public", resp.ClientSecret == "")

	h.writeJSON(w, http.StatusCreated, resp)
}
