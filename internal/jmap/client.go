package jmap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the Fastmail API base URL used when none is configured.
const DefaultBaseURL = "https://api.fastmail.com"

const wellKnownPath = "/.well-known/jmap"

// Client is a JMAP client with session caching. A single Client is safe
// for concurrent use; the discovered session (API URL and account ID) is
// shared across calls and refreshed at most once per failing call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.Mutex
	apiURL    string
	accountID string
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (timeouts, instrumentation).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a JMAP client for the given server and API token.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("jmap: API token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// Discover fetches the JMAP session document and caches the API URL and
// primary mail account ID. It is called lazily by Call and AccountID but
// can be invoked directly for a connectivity check.
func (c *Client) Discover(ctx context.Context) error {
	session, err := c.fetchSession(ctx)
	if err != nil {
		return err
	}

	accountID := session.PrimaryAccounts[CapabilityMail]
	if accountID == "" {
		// Fall back to any account when the server doesn't advertise a
		// primary mail account.
		for id := range session.Accounts {
			accountID = id
			break
		}
	}
	if accountID == "" {
		return fmt.Errorf("jmap: session contains no accounts")
	}

	c.mu.Lock()
	c.apiURL = session.APIURL
	c.accountID = accountID
	c.mu.Unlock()

	c.logger.Debug("jmap session discovered",
		"api_url", session.APIURL,
		"username", session.Username)
	return nil
}

func (c *Client) fetchSession(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+wellKnownPath, nil)
	if err != nil {
		return nil, fmt.Errorf("jmap: failed to create session request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jmap: session discovery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jmap: session discovery returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("jmap: failed to decode session: %w", err)
	}
	if session.APIURL == "" {
		return nil, fmt.Errorf("jmap: session is missing apiUrl")
	}
	return &session, nil
}

// AccountID returns the primary mail account ID, discovering the session
// first if needed.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.accountID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	if err := c.Discover(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID, nil
}

// resetSession drops the cached session so the next call re-discovers it.
func (c *Client) resetSession() {
	c.mu.Lock()
	c.apiURL = ""
	c.accountID = ""
	c.mu.Unlock()
}

// Call executes the given method calls in a single JMAP request and
// returns the method responses. If the server rejects the request with a
// session-level error (400/401/403), the cached session is dropped, the
// session is re-discovered and the request retried once.
func (c *Client) Call(ctx context.Context, calls []Invocation) ([]Invocation, error) {
	c.mu.Lock()
	apiURL := c.apiURL
	c.mu.Unlock()

	if apiURL == "" {
		if err := c.Discover(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		apiURL = c.apiURL
		c.mu.Unlock()
	}

	body, err := json.Marshal(Request{
		Using:       []string{CapabilityCore, CapabilityMail},
		MethodCalls: calls,
	})
	if err != nil {
		return nil, fmt.Errorf("jmap: failed to encode request: %w", err)
	}

	resp, err := c.post(ctx, apiURL, body)
	if err != nil {
		return nil, err
	}

	// Re-discover on session errors and retry once.
	if resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		c.logger.Debug("jmap call rejected, re-discovering session",
			"status", resp.StatusCode)

		c.resetSession()
		if err := c.Discover(ctx); err != nil {
			return nil, err
		}

		c.mu.Lock()
		apiURL = c.apiURL
		c.mu.Unlock()

		resp, err = c.post(ctx, apiURL, body)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jmap: API call returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("jmap: failed to decode response: %w", err)
	}
	return response.MethodResponses, nil
}

func (c *Client) post(ctx context.Context, apiURL string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jmap: failed to create API request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jmap: API call failed: %w", err)
	}
	return resp, nil
}
