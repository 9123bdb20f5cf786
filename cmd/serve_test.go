package cmd

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestResolveBaseURL(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name     string
		flag     string
		env      string
		addr     string
		expected string
	}{
		{
			name:     "flag takes precedence",
			flag:     "https://mcp.example.com",
			env:      "https://other.example.com",
			addr:     ":8080",
			expected: "https://mcp.example.com",
		},
		{
			name:     "env var fallback",
			flag:     "",
			env:      "https://mcp.example.com",
			addr:     ":8080",
			expected: "https://mcp.example.com",
		},
		{
			name:     "auto-detect for port-only addr",
			flag:     "",
			env:      "",
			addr:     ":8080",
			expected: "http://localhost:8080",
		},
		{
			name:     "auto-detect for host addr",
			flag:     "",
			env:      "",
			addr:     "127.0.0.1:8080",
			expected: "http://127.0.0.1:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MCP_BASE_URL", tt.env)

			got := resolveBaseURL(tt.flag, tt.addr, logger)
			if got != tt.expected {
				t.Errorf("resolveBaseURL(%q, %q) = %q, want %q", tt.flag, tt.addr, got, tt.expected)
			}
		})
	}
}

func TestNewJMAPClientFromEnv(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("FASTMAIL_API_TOKEN", "")

		if _, err := newJMAPClientFromEnv(slog.Default()); err == nil {
			t.Error("expected error without FASTMAIL_API_TOKEN")
		}
	})

	t.Run("custom base URL", func(t *testing.T) {
		t.Setenv("FASTMAIL_API_TOKEN", "test-token")
		t.Setenv("FASTMAIL_BASE_URL", "https://jmap.example.com")

		client, err := newJMAPClientFromEnv(slog.Default())
		if err != nil {
			t.Fatalf("newJMAPClientFromEnv() error = %v", err)
		}
		if got := client.BaseURL(); got != "https://jmap.example.com" {
			t.Errorf("BaseURL() = %q, want https://jmap.example.com", got)
		}
	})
}

func TestRunGenerateDocs(t *testing.T) {
	// Write to a temp file to keep stdout clean
	outFile := t.TempDir() + "/tools.md"

	if err := runGenerateDocs(outFile); err != nil {
		t.Fatalf("runGenerateDocs() error = %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read generated docs: %v", err)
	}

	for _, tool := range []string{"list_mailboxes", "list_emails", "get_email", "search_emails", "get_thread"} {
		if !strings.Contains(string(data), "## "+tool) {
			t.Errorf("generated docs missing section for %s", tool)
		}
	}
}
