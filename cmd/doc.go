// Package cmd implements the command-line interface for fastmail-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing read-only Fastmail mailbox tools
//   - check: Verify JMAP connectivity for the configured account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
