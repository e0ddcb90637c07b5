package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veriscan/internal/client"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				status, err := c.Status(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, status)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running:   %s\n", yesNo(status.Running))
				fmt.Fprintf(out, "PID:       %d\n", status.PID)
				fmt.Fprintf(out, "Provider:  %s\n", status.Provider)
				fmt.Fprintf(out, "Store:     %s\n", status.StorePath)
				fmt.Fprintf(out, "Lock file: %s\n", status.LockFilePath)
				fmt.Fprintf(out, "Store health: readable=%s integrity=%s documents=%d\n",
					yesNo(status.Store.Readable), yesNo(status.Store.IntegrityOK), status.Store.TotalDocuments)
				if status.Store.Error != "" {
					fmt.Fprintf(out, "  store error: %s\n", status.Store.Error)
				}
				if len(status.Documents) > 0 {
					fmt.Fprintln(out, "Documents:")
					for _, state := range []string{"created", "awaiting_verification", "verified", "rejected"} {
						if count, ok := status.Documents[state]; ok {
							fmt.Fprintf(out, "  %-22s %d\n", state, count)
						}
					}
				}
				if len(status.Dependencies) > 0 {
					fmt.Fprintln(out, "Dependencies:")
					for _, dep := range status.Dependencies {
						detail := dep.Detail
						if detail == "" {
							detail = dep.Command
						}
						fmt.Fprintf(out, "  %-10s available=%s optional=%s %s\n",
							dep.Name, yesNo(dep.Available), yesNo(dep.Optional), detail)
					}
				}
				return nil
			})
		},
	}
}
