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

func newListCommand(ctx *commandContext) *cobra.Command {
	var states []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List document sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp api.DocumentListResponse
			err := ctx.withClient(func(c *client.Client) error {
				var clientErr error
				resp, clientErr = c.List(cmd.Context(), states...)
				return clientErr
			})
			if err != nil {
				// A daemon answer like 400 is authoritative; only fall back
				// to the store when the daemon was unreachable. Decided
				// documents stay readable without a running daemon.
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					return err
				}
				fallback, storeErr := listFromStore(cmd.Context(), ctx, states)
				if storeErr != nil {
					return err
				}
				resp = fallback
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			if len(resp.Documents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDocumentList(resp.Documents))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&states, "state", nil, "Filter by session state (created, awaiting_verification, verified, rejected)")
	return cmd
}

func listFromStore(cmdCtx context.Context, ctx *commandContext, states []string) (api.DocumentListResponse, error) {
	parsed, err := api.ParseStates(states...)
	if err != nil {
		return api.DocumentListResponse{}, err
	}

	var resp api.DocumentListResponse
	err = ctx.withStore(func(st *store.Store) error {
		sessions, listErr := st.List(cmdCtx, parsed...)
		if listErr != nil {
			return listErr
		}
		resp.Documents = api.FromSessions(sessions)
		return nil
	})
	return resp, err
}
