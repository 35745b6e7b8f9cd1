// file: cmd/instapaper-mcp/rules.go
package main

import (
	"fmt"

	"github.com/dkoosis/instapaper-mcp/internal/schema"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the naming rules tools, prompts and resources are checked against",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), schema.DumpAllRules())
		},
	}
}
