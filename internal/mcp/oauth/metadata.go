package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
)

// MetadataCache fetches the identity provider's OpenID Connect discovery
// document once and serves it from memory for the rest of the process
// lifetime. The provider's configuration is effectively static, so there
// is no TTL and no invalidation.
//
// Concurrent first calls may each issue the upstream fetch; the race is
// benign (idempotent reads, last write wins) and the atomic pointer
// guarantees later calls observe a complete document.
type MetadataCache struct {
	issuerURL  string
	httpClient *http.Client
	logger     *slog.Logger
	doc        atomic.Pointer[Document]
}

// NewMetadataCache creates a cache for the given issuer. The cache is
// owned by the composition root and injected into the discovery handler,
// so tests can substitute the upstream via the HTTP client.
func NewMetadataCache(issuerURL string, httpClient *http.Client, logger *slog.Logger) *MetadataCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataCache{
		issuerURL:  strings.TrimSuffix(issuerURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// ProviderMetadata returns the provider's discovery document, fetching it
// from {issuer}/.well-known/openid-configuration on first use. A failed
// fetch leaves the cache unpopulated so a later request retries.
func (c *MetadataCache) ProviderMetadata(ctx context.Context) (Document, error) {
	if doc := c.doc.Load(); doc != nil {
		return *doc, nil
	}

	doc, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.doc.Store(&doc)
	c.logger.Debug("provider metadata cached", "issuer", c.issuerURL)
	return doc, nil
}

func (c *MetadataCache) fetch(ctx context.Context) (Document, error) {
	wellKnownURL := c.issuerURL + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider metadata endpoint returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode provider metadata: %w", err)
	}
	return doc, nil
}
