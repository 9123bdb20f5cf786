package mail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/fastmail-mcp/internal/jmap"
	"github.com/teemow/fastmail-mcp/internal/server"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

// parseLimit reads the optional limit argument, applying the default and
// the upper bound.
func parseLimit(args map[string]interface{}) int {
	limit := defaultListLimit
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func handleListEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	mailboxID, ok := args["mailbox_id"].(string)
	if !ok || mailboxID == "" {
		return mcp.NewToolResultError("'mailbox_id' field is required"), nil
	}

	limit := parseLimit(args)
	position := 0
	if positionVal, ok := args["position"].(float64); ok && positionVal > 0 {
		position = int(positionVal)
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
			Name: "Email/query",
			Args: map[string]any{
				"accountId": accountID,
				"filter":    jmap.EmailFilterCondition{InMailbox: mailboxID},
				"sort":      []jmap.SortComparator{{Property: "receivedAt", IsAscending: false}},
				"position":  position,
				"limit":     limit,
			},
			CallID: "0",
		},
		{
			Name: "Email/get",
			Args: map[string]any{
				"accountId":  accountID,
				"#ids":       jmap.ResultReference{ResultOf: "0", Name: "Email/query", Path: "/ids"},
				"properties": []string{"id", "threadId", "from", "subject", "receivedAt", "preview"},
			},
			CallID: "1",
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}

	var query jmap.EmailQueryResponse
	if err := responseArgs(responses, "0", &query); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}
	var emails jmap.EmailGetResponse
	if err := responseArgs(responses, "1", &emails); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}

	lines := []string{fmt.Sprintf("Showing %d of %d emails (offset %d):", len(emails.List), query.Total, position)}
	for _, e := range emails.List {
		lines = appendEmailSummary(lines, e)
	}

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	emailID, ok := args["email_id"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("'email_id' field is required"), nil
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
			Name: "Email/get",
			Args: map[string]any{
				"accountId": accountID,
				"ids":       []string{emailID},
				"properties": []string{
					"id", "threadId", "from", "to", "cc", "subject", "receivedAt",
					"bodyValues", "textBody", "htmlBody", "hasAttachment", "attachments",
				},
				"fetchTextBodyValues": true,
				"fetchHTMLBodyValues": true,
			},
			CallID: "0",
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}

	var emails jmap.EmailGetResponse
	if err := responseArgs(responses, "0", &emails); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}
	if len(emails.List) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Email %s not found.", emailID)), nil
	}
	e := emails.List[0]

	attachments := ""
	if len(e.Attachments) > 0 {
		names := make([]string, 0, len(e.Attachments))
		for _, a := range e.Attachments {
			name := a.Name
			if name == "" {
				name = "unnamed"
			}
			names = append(names, name)
		}
		attachments = fmt.Sprintf("\nAttachments: %s", strings.Join(names, ", "))
	}

	text := fmt.Sprintf("**%s**\nFrom: %s\nTo: %s\nCC: %s\nDate: %s\n%s\n---\n%s",
		e.Subject,
		formatAddressList(e.From),
		formatAddressList(e.To),
		formatAddressList(e.CC),
		e.ReceivedAt,
		attachments,
		textBody(e))

	return mcp.NewToolResultText(text), nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var conditions []any
	if query, ok := args["query"].(string); ok && query != "" {
		conditions = append(conditions, jmap.EmailFilterCondition{Text: query})
	}
	if from, ok := args["from_address"].(string); ok && from != "" {
		conditions = append(conditions, jmap.EmailFilterCondition{From: from})
	}
	if subject, ok := args["subject"].(string); ok && subject != "" {
		conditions = append(conditions, jmap.EmailFilterCondition{Subject: subject})
	}
	if after, ok := args["after"].(string); ok && after != "" {
		conditions = append(conditions, jmap.EmailFilterCondition{After: after + "T00:00:00Z"})
	}
	if before, ok := args["before"].(string); ok && before != "" {
		conditions = append(conditions, jmap.EmailFilterCondition{Before: before + "T23:59:59Z"})
	}
	if hasAttachment, ok := args["has_attachment"].(bool); ok {
		conditions = append(conditions, jmap.EmailFilterCondition{HasAttachment: &hasAttachment})
	}

	if len(conditions) == 0 {
		return mcp.NewToolResultText("Please provide at least one search criterion."), nil
	}

	var filter any = conditions[0]
	if len(conditions) > 1 {
		filter = jmap.EmailFilterOperator{Operator: "AND", Conditions: conditions}
	}

	limit := parseLimit(args)

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
			Name: "Email/query",
			Args: map[string]any{
				"accountId": accountID,
				"filter":    filter,
				"sort":      []jmap.SortComparator{{Property: "receivedAt", IsAscending: false}},
				"limit":     limit,
			},
			CallID: "0",
		},
		{
			Name: "Email/get",
			Args: map[string]any{
				"accountId":  accountID,
				"#ids":       jmap.ResultReference{ResultOf: "0", Name: "Email/query", Path: "/ids"},
				"properties": []string{"id", "threadId", "from", "subject", "receivedAt", "preview"},
			},
			CallID: "1",
		},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	var query jmap.EmailQueryResponse
	if err := responseArgs(responses, "0", &query); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}
	var emails jmap.EmailGetResponse
	if err := responseArgs(responses, "1", &emails); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	if len(emails.List) == 0 {
		return mcp.NewToolResultText("No emails found matching your search."), nil
	}

	lines := []string{fmt.Sprintf("Found %d results (showing %d):", query.Total, len(emails.List))}
	for _, e := range emails.List {
		lines = appendEmailSummary(lines, e)
	}

	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
