// file: cmd/instapaper-mcp/verify.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check configuration and log in to Instapaper without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := setupLoggingAndConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			client := newClient(cfg)
			if err := client.Authenticate(ctx); err != nil {
				fmt.Fprintln(out, "❌ xAuth login failed.")
				return err
			}
			fmt.Fprintln(out, "✅ xAuth login succeeded.")

			if !client.VerifyCredentials(ctx) {
				fmt.Fprintln(out, "❌ Token pair was not accepted by account/verify_credentials.")
				return errors.New("credential verification failed")
			}
			fmt.Fprintln(out, "✅ Token pair verified.")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall time limit for the check")
	return cmd
}
