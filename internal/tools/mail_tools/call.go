package mail_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/fastmail-mcp/internal/instrumentation"
	"github.com/teemow/fastmail-mcp/internal/jmap"
	"github.com/teemow/fastmail-mcp/internal/server"
)

// callJMAP executes a batch of JMAP method calls through the server
// context's client, recording a span and per-method metrics when
// instrumentation is configured.
func callJMAP(ctx context.Context, sc *server.ServerContext, calls []jmap.Invocation) ([]jmap.Invocation, error) {
	client := sc.JMAPClient()
	if client == nil {
		return nil, fmt.Errorf("JMAP client is not configured")
	}

	spanCtx, span := instrumentation.StartJMAPSpan(ctx, calls[0].Name)
	defer span.End()

	start := time.Now()
	responses, err := client.Call(spanCtx, calls)
	duration := time.Since(start)

	if metrics := sc.Metrics(); metrics != nil {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		for _, call := range calls {
			metrics.RecordJMAPMethodCall(ctx, call.Name, status, duration)
		}
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return responses, nil
}

// responseArgs finds the response for the given call ID and decodes its
// arguments into v. A method-level "error" response is surfaced as an
// error instead of being decoded.
func responseArgs(responses []jmap.Invocation, callID string, v any) error {
	for _, resp := range responses {
		if resp.CallID != callID {
			continue
		}
		if resp.Name == "error" {
			var methodErr struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := resp.DecodeArgs(&methodErr); err != nil {
				return fmt.Errorf("jmap method error (call %s)", callID)
			}
			if methodErr.Description != "" {
				return fmt.Errorf("jmap method error: %s (%s)", methodErr.Type, methodErr.Description)
			}
			return fmt.Errorf("jmap method error: %s", methodErr.Type)
		}
		return resp.DecodeArgs(v)
	}
	return fmt.Errorf("jmap response is missing call %s", callID)
}
