package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"veriscan/internal/api"
	"veriscan/internal/client"
	"veriscan/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <document-id>",
		Short: "Display one document session with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			var resp api.DocumentResponse
			err := ctx.withClient(func(c *client.Client) error {
				var clientErr error
				resp, clientErr = c.Get(cmd.Context(), id)
				return clientErr
			})
			if err != nil {
				// A daemon answer like 404 is authoritative; only fall back
				// to the store when the daemon was unreachable.
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					return err
				}
				fallback, storeErr := showFromStore(cmd.Context(), ctx, id)
				if storeErr != nil {
					return err
				}
				resp = fallback
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDocument(resp.Document))
			return nil
		},
	}
}

func showFromStore(cmdCtx context.Context, ctx *commandContext, id string) (api.DocumentResponse, error) {
	var resp api.DocumentResponse
	err := ctx.withStore(func(st *store.Store) error {
		sess, getErr := st.GetSession(cmdCtx, id)
		if getErr != nil {
			return getErr
		}
		resp.Document = api.FromSession(sess)
		return nil
	})
	return resp, err
}
