package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the fastmail-mcp application
var rootCmd = &cobra.Command{
	Use:   "fastmail-mcp",
	Short: "MCP server for a Fastmail mailbox",
	Long: `fastmail-mcp exposes a single user's Fastmail mailbox as read-only
MCP (Model Context Protocol) tools over JMAP.

It can run as:
  - An MCP server on stdio for local AI assistants (default)
  - An MCP server over streamable HTTP with OAuth bearer authentication,
    suitable for remote clients such as Claude.ai`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fastmail-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
