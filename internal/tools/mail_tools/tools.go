package mail_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/fastmail-mcp/internal/server"
	"github.com/teemow/fastmail-mcp/internal/tools/common"
)

// readOnlyAnnotations marks a tool as read-only for MCP clients. Every
// tool in this package only reads mailbox state, so they all share the
// same hints.
func readOnlyAnnotations(title string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
}

// RegisterMailTools registers all Fastmail mailbox tools with the MCP server
func RegisterMailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List mailboxes tool
	listMailboxesOpts := append([]mcp.ToolOption{
		mcp.WithDescription("List all mailboxes with message counts"),
	}, readOnlyAnnotations("List Mailboxes")...)
	listMailboxesTool := mcp.NewTool("list_mailboxes", listMailboxesOpts...)

	s.AddTool(listMailboxesTool, common.InstrumentedToolHandler("list_mailboxes", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMailboxes(ctx, request, sc)
		}))

	// List emails tool
	listEmailsOpts := append([]mcp.ToolOption{
		mcp.WithDescription("List emails in a mailbox, showing sender, subject, date, and snippet"),
		mcp.WithString("mailbox_id",
			mcp.Required(),
			mcp.Description("The mailbox ID (from list_mailboxes)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of emails to return (default 20, max 50)"),
		),
		mcp.WithNumber("position",
			mcp.Description("Offset for pagination (default 0)"),
		),
	}, readOnlyAnnotations("List Emails")...)
	listEmailsTool := mcp.NewTool("list_emails", listEmailsOpts...)

	s.AddTool(listEmailsTool, common.InstrumentedToolHandler("list_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEmails(ctx, request, sc)
		}))

	// Get email tool
	getEmailOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the full content of an email by ID"),
		mcp.WithString("email_id",
			mcp.Required(),
			mcp.Description("The email ID (from list_emails or search_emails)"),
		),
	}, readOnlyAnnotations("Get Email")...)
	getEmailTool := mcp.NewTool("get_email", getEmailOpts...)

	s.AddTool(getEmailTool, common.InstrumentedToolHandler("get_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	// Search emails tool
	searchEmailsOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Search emails by various criteria"),
		mcp.WithString("query",
			mcp.Description("Full-text search across all fields"),
		),
		mcp.WithString("from_address",
			mcp.Description("Filter by sender email address"),
		),
		mcp.WithString("subject",
			mcp.Description("Filter by subject text"),
		),
		mcp.WithString("after",
			mcp.Description("Only emails after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("before",
			mcp.Description("Only emails before this date (YYYY-MM-DD)"),
		),
		mcp.WithBoolean("has_attachment",
			mcp.Description("Filter emails with/without attachments"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default 20, max 50)"),
		),
	}, readOnlyAnnotations("Search Emails")...)
	searchEmailsTool := mcp.NewTool("search_emails", searchEmailsOpts...)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandler("search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Get thread tool
	getThreadOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Get all emails in a conversation thread"),
		mcp.WithString("thread_id",
			mcp.Required(),
			mcp.Description("The thread ID (from list_emails or search_emails)"),
		),
	}, readOnlyAnnotations("Get Thread")...)
	getThreadTool := mcp.NewTool("get_thread", getThreadOpts...)

	s.AddTool(getThreadTool, common.InstrumentedToolHandler("get_thread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThread(ctx, request, sc)
		}))

	return nil
}
