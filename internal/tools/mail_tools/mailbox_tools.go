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

func handleListMailboxes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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
			Name: "Mailbox/get",
			Args: map[string]any{
				"accountId":  accountID,
				"properties": []string{"name", "parentId", "role", "totalEmails", "unreadEmails"},
			},
			CallID: "0",
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list mailboxes: %v", err)), nil
	}

	var mailboxes jmap.MailboxGetResponse
	if err := responseArgs(responses, "0", &mailboxes); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list mailboxes: %v", err)), nil
	}

	sorted := make([]jmap.Mailbox, len(mailboxes.List))
	copy(sorted, mailboxes.List)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	lines := make([]string, 0, len(sorted))
	for _, mb := range sorted {
		unread := ""
		if mb.UnreadEmails > 0 {
			unread = fmt.Sprintf(" (%d unread)", mb.UnreadEmails)
		}
		lines = append(lines, fmt.Sprintf("- %s: %d emails%s [id:%s]", mb.Name, mb.TotalEmails, unread, mb.ID))
	}

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
