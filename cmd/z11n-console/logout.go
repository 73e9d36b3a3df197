// ABOUTME: Non-interactive subcommand clearing the persisted session
// ABOUTME: Local clear always wins; server-side revocation is best-effort

package main

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func logoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := setup(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if !client.Sessions().Active() {
				color.Yellow("not signed in")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := client.Logout(ctx); err != nil {
				return err
			}
			color.Green("signed out")
			return nil
		},
	}
}
