package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fastmail-mcp/internal/instrumentation"
	"github.com/teemow/fastmail-mcp/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and tracing.
// It records tool invocation metrics and creates a span per invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()

		// If no instrumentation configured, just call the handler
		if metrics == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		spanCtx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		result, err := handler(spanCtx, request)
		duration := time.Since(start)

		// A handler error or an error result both count as failures
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				instrumentation.SetSpanError(span, err)
			}
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)

		return result, err
	}
}
