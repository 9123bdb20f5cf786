package mail_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fastmail-mcp/internal/jmap"
	"github.com/teemow/fastmail-mcp/internal/server"
)

func handleGetThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, ok := args["thread_id"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("'thread_id' field is required"), nil
	}

	client := sc.JMAPClient()
	if client == nil {
		return mcp.NewToolResultError("JMAP client is not configured"), nil
	}
	accountID, err := client.AccountID(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to discover JMAP session: %v", err)), nil
	}

	responses, err := callJMAP(ctx, sc, []jmap.Invocation{
		{
			Name: "Thread/get",
			Args: map[string]any{
				"accountId": accountID,
				"ids":       []string{threadID},
			},
			CallID: "0",
		},
		{
			Name: "Email/get",
			Args: map[string]any{
				"accountId": accountID,
				"#ids":      jmap.ResultReference{ResultOf: "0", Name: "Thread/get", Path: "/list/*/emailIds"},
				"properties": []string{
					"id", "from", "to", "subject", "receivedAt",
					"bodyValues", "textBody", "preview",
				},
				"fetchTextBodyValues": true,
			},
			CallID: "1",
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}

	var threads jmap.ThreadGetResponse
	if err := responseArgs(responses, "0", &threads); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}
	if len(threads.List) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Thread %s not found.", threadID)), nil
	}

	var emails jmap.EmailGetResponse
	if err := responseArgs(responses, "1", &emails); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get thread: %v", err)), nil
	}

	// Conversation order, oldest first
	messages := make([]jmap.Email, len(emails.List))
	copy(messages, emails.List)
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt < messages[j].ReceivedAt
	})

	subject := "unknown"
	if len(messages) > 0 {
		subject = messages[0].Subject
	}

	lines := []string{fmt.Sprintf("Thread: %s (%d messages)", subject, len(messages))}
	for _, e := range messages {
		body := bodyFromParts(e.TextBody, e.BodyValues)
		if body == "" {
			body = e.Preview
		}
		lines = append(lines, fmt.Sprintf("\n--- %s (%s) ---", senderDisplay(e.From), e.ReceivedAt))
		lines = append(lines, truncateRunes(body, bodyRunes))
	}

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
