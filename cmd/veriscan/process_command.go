package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veriscan/internal/client"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <image>",
		Short: "Upload a document image and open a verification session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			image, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read image %s: %w", path, err)
			}

			return ctx.withClient(func(c *client.Client) error {
				resp, err := c.Process(cmd.Context(), filepath.Base(path), image)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Opened document %s\n", resp.Document.ID)
				if resp.Degraded {
					fmt.Fprintln(out, "Extraction unavailable; session opened with empty fields.")
				}
				fmt.Fprintln(out, renderFields(resp.Document.Fields))
				return nil
			})
		},
	}
}
