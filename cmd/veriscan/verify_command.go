package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veriscan/internal/client"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <document-id> [kind=value ...]",
		Short: "Submit operator values and reconcile them against the extraction",
		Long: "Submit operator-confirmed field values for a document. Omitted field kinds\n" +
			"confirm the extracted value as-is. Example:\n\n" +
			"  veriscan verify 4f7c... full_name=\"Jon Doe\" uid=246109002",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			return ctx.withClient(func(c *client.Client) error {
				resp, err := c.Verify(cmd.Context(), args[0], values)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderVerdicts(resp.Verdicts))
				if resp.Accepted {
					fmt.Fprintf(out, "Document accepted; state is now %s\n", resp.State)
				} else {
					fmt.Fprintf(out, "Document not accepted; state is %s. Rejected fields need a resubmitted value.\n", resp.State)
				}
				if !resp.Persisted {
					fmt.Fprintf(out, "Warning: outcome not yet saved (%s). Retry with `veriscan flush %s`.\n", resp.PersistenceError, args[0])
				}
				return nil
			})
		},
	}
}
