package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veriscan/internal/api"
	"veriscan/internal/client"
)

func newFieldCommand(ctx *commandContext) *cobra.Command {
	fieldCmd := &cobra.Command{
		Use:   "field",
		Short: "Operator actions on individual fields",
	}

	fieldCmd.AddCommand(newFieldEditCommand(ctx))
	fieldCmd.AddCommand(newFieldAcceptCommand(ctx))
	fieldCmd.AddCommand(newFieldRejectCommand(ctx))
	return fieldCmd
}

func newFieldEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <document-id> <kind> <value>",
		Short: "Record a corrected value for one field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldAction(ctx, cmd, func(c *client.Client) (api.DocumentResponse, error) {
				return c.EditField(cmd.Context(), args[0], args[1], args[2])
			})
		},
	}
}

func newFieldAcceptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <document-id> <kind>",
		Short: "Mark one field as reviewed and correct",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldAction(ctx, cmd, func(c *client.Client) (api.DocumentResponse, error) {
				return c.AcceptField(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newFieldRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <document-id> <kind>",
		Short: "Flag one field as wrong pending resubmission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFieldAction(ctx, cmd, func(c *client.Client) (api.DocumentResponse, error) {
				return c.RejectField(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func runFieldAction(ctx *commandContext, cmd *cobra.Command, action func(*client.Client) (api.DocumentResponse, error)) error {
	return ctx.withClient(func(c *client.Client) error {
		resp, err := action(c)
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeJSON(cmd, resp)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFields(resp.Document.Fields))
		return nil
	})
}
