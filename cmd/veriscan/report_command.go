package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veriscan/internal/client"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report <document-id>",
		Short: "Generate and display the verification report for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				resp, err := c.Report(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, resp.Text)
				fmt.Fprintf(out, "Report written to %s (JSON: %s)\n", resp.TextPath, resp.JSONPath)
				return nil
			})
		},
	}
}
