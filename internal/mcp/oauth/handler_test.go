package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newUpstreamIssuer fakes the Cognito discovery surface. The returned
// server responds to the OIDC discovery path with doc and serves an
// empty JWKS.
func newUpstreamIssuer(t *testing.T, doc map[string]any, fetches *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			if fetches != nil {
				*fetches++
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(doc); err != nil {
				t.Errorf("encoding discovery document: %v", err)
			}
		case "/.well-known/jwks.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"keys":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, issuerURL string) *Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h, err := NewHandler(ctx, Config{
		BaseURL:              "https://example.ts.net",
		IssuerURL:            issuerURL,
		PublicClientID:       "public-client-id",
		ConfidentialClientID: "confidential-client-id",
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func TestNewHandlerValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				BaseURL:              "https://example.ts.net",
				IssuerURL:            "https://cognito-idp.eu-central-1.amazonaws.com/pool",
				PublicClientID:       "pub",
				ConfidentialClientID: "conf",
			},
		},
		{
			name: "missing base URL",
			cfg: Config{
				IssuerURL:            "https://issuer.example.com",
				PublicClientID:       "pub",
				ConfidentialClientID: "conf",
			},
			wantErr: true,
		},
		{
			name: "missing issuer",
			cfg: Config{
				BaseURL:              "https://example.ts.net",
				PublicClientID:       "pub",
				ConfidentialClientID: "conf",
			},
			wantErr: true,
		},
		{
			name: "missing public client",
			cfg: Config{
				BaseURL:              "https://example.ts.net",
				IssuerURL:            "https://issuer.example.com",
				ConfidentialClientID: "conf",
			},
			wantErr: true,
		},
		{
			name: "missing confidential client",
			cfg: Config{
				BaseURL:        "https://example.ts.net",
				IssuerURL:      "https://issuer.example.com",
				PublicClientID: "pub",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			_, err := NewHandler(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{
		BaseURL:              "https://example.ts.net/",
		IssuerURL:            "https://issuer.example.com/",
		PublicClientID:       "pub",
		ConfidentialClientID: "conf",
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.BaseURL != "https://example.ts.net" {
		t.Errorf("BaseURL = %q, want trailing slash stripped", cfg.BaseURL)
	}
	if cfg.JWKSURI != "https://issuer.example.com/.well-known/jwks.json" {
		t.Errorf("JWKSURI = %q, want Cognito convention default", cfg.JWKSURI)
	}
	if cfg.MCPPath != "/mcp" {
		t.Errorf("MCPPath = %q, want /mcp", cfg.MCPPath)
	}
	if cfg.HTTPClient == nil {
		t.Error("HTTPClient not defaulted")
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestRoutes(t *testing.T) {
	issuer := newUpstreamIssuer(t, map[string]any{"issuer": "upstream"}, nil)
	h := newTestHandler(t, issuer.URL)

	want := []string{
		"/.well-known/oauth-protected-resource",
		"/.well-known/oauth-protected-resource/mcp",
		"/.well-known/oauth-authorization-server",
		"/.well-known/oauth-authorization-server/mcp",
		"/oauth/register",
	}

	routes := h.Routes()
	if len(routes) != len(want) {
		t.Fatalf("Routes() returned %d routes, want %d", len(routes), len(want))
	}
	for i, route := range routes {
		if route.Path != want[i] {
			t.Errorf("Routes()[%d].Path = %q, want %q", i, route.Path, want[i])
		}
		if route.Handler == nil {
			t.Errorf("Routes()[%d].Handler is nil", i)
		}
	}
}

func TestResourceMetadataURL(t *testing.T) {
	issuer := newUpstreamIssuer(t, map[string]any{"issuer": "upstream"}, nil)
	h := newTestHandler(t, issuer.URL)

	want := "https://example.ts.net/.well-known/oauth-protected-resource"
	if got := h.ResourceMetadataURL(); got != want {
		t.Errorf("ResourceMetadataURL() = %q, want %q", got, want)
	}
}
