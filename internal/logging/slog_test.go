package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestWithComponent(t *testing.T) {
	logger := slog.Default()
	result := WithComponent(logger, "oauth")
	if result == nil {
		t.Error("WithComponent returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "mail_list_mailboxes")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("discover_session")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "discover_session" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "discover_session")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != "success" {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), "success")
	}
}

func TestErrAttr(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		attr := Err(errors.New("boom"))
		if attr.Key != KeyError {
			t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
		}
		if attr.Value.String() != "boom" {
			t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
		}
	})

	t.Run("with nil error", func(t *testing.T) {
		attr := Err(nil)
		// Empty group attrs are omitted by slog
		if attr.Key != "" {
			t.Errorf("Err(nil) key = %q, want empty", attr.Key)
		}
	})
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{
			name:     "empty token",
			token:    "",
			expected: "<empty>",
		},
		{
			name:     "short token",
			token:    "abc",
			expected: "[token:3 chars]",
		},
		{
			name:     "jwt-like token",
			token:    "eyJhbGciOiJSUzI1NiJ9.eyJzdWIiOiJ4In0.sig",
			expected: "[token:40 chars]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}
