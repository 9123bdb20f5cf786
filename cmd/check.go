package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/fastmail-mcp/internal/jmap"
	"github.com/teemow/fastmail-mcp/internal/logging"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the configured Fastmail account",
		Long: `Discover the JMAP session for the configured Fastmail account and list
the mailboxes it contains. Useful to verify FASTMAIL_API_TOKEN before
starting the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			client, err := newJMAPClientFromEnv(logging.Setup(false))
			if err != nil {
				return err
			}

			if err := client.Discover(ctx); err != nil {
				return fmt.Errorf("session discovery failed: %w", err)
			}
			accountID, err := client.AccountID(ctx)
			if err != nil {
				return err
			}

			responses, err := client.Call(ctx, []jmap.Invocation{
				{
					Name: "Mailbox/get",
					Args: map[string]any{
						"accountId":  accountID,
						"properties": []string{"name", "totalEmails"},
					},
					CallID: "0",
				},
			})
			if err != nil {
				return fmt.Errorf("Mailbox/get failed: %w", err)
			}

			var mailboxes jmap.MailboxGetResponse
			if len(responses) == 0 {
				return fmt.Errorf("empty JMAP response")
			}
			if err := responses[0].DecodeArgs(&mailboxes); err != nil {
				return fmt.Errorf("failed to decode Mailbox/get response: %w", err)
			}

			fmt.Printf("Connected to %s\n", client.BaseURL())
			fmt.Printf("Account: %s\n", accountID)
			fmt.Printf("Mailboxes: %d\n", len(mailboxes.List))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for the connectivity check")
	return cmd
}
