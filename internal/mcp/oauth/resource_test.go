package oauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServeProtectedResourceMetadata(t *testing.T) {
	issuer := newUpstreamIssuer(t, map[string]any{"issuer": "upstream"}, nil)
	h := newTestHandler(t, issuer.URL)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	rec := httptest.NewRecorder()
	h.ServeProtectedResourceMetadata(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", got)
	}

	want := `{"resource":"https://example.ts.net/mcp","authorization_servers":["https://example.ts.net"],"scopes_supported":[],"bearer_methods_supported":["header"]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestResourceMetadataNoDoubledSlash(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "plain base", baseURL: "https://example.ts.net"},
		{name: "trailing slash", baseURL: "https://example.ts.net/"},
		{name: "many trailing slashes", baseURL: "https://example.ts.net///"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				BaseURL:              tt.baseURL,
				IssuerURL:            "https://issuer.example.com",
				PublicClientID:       "pub",
				ConfidentialClientID: "conf",
			}
			if err := cfg.validate(); err != nil {
				t.Fatalf("validate() error = %v", err)
			}

			h := &Handler{config: cfg, logger: cfg.Logger}
			meta := h.ResourceMetadata()

			if meta.Resource != "https://example.ts.net/mcp" {
				t.Errorf("resource = %q, want https://example.ts.net/mcp", meta.Resource)
			}
			if len(meta.AuthorizationServers) != 1 || meta.AuthorizationServers[0] != "https://example.ts.net" {
				t.Errorf("authorization_servers = %v", meta.AuthorizationServers)
			}
		})
	}
}

func TestServeProtectedResourceMetadataMethods(t *testing.T) {
	issuer := newUpstreamIssuer(t, map[string]any{"issuer": "upstream"}, nil)
	h := newTestHandler(t, issuer.URL)

	tests := []struct {
		method string
		want   int
	}{
		{method: http.MethodGet, want: http.StatusOK},
		{method: http.MethodOptions, want: http.StatusOK},
		{method: http.MethodPost, want: http.StatusMethodNotAllowed},
		{method: http.MethodDelete, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/.well-known/oauth-protected-resource", nil)
			rec := httptest.NewRecorder()
			h.ServeProtectedResourceMetadata(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
