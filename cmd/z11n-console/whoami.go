// ABOUTME: Non-interactive subcommand reporting the persisted session
// ABOUTME: Answers from local state only, no server traffic

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/z11n/z11n-console/internal/session"
)

func whoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and granted operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := setup(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			sess, err := client.Sessions().Current()
			if errors.Is(err, session.ErrNoSession) {
				color.Yellow("not signed in")
				return nil
			}
			if err != nil {
				return err
			}

			color.Green("signed in as %s", sess.DisplayName)
			fmt.Printf("granted operations: %d\n", len(sess.Grants))
			for _, g := range sess.Grants {
				fmt.Printf("  %-7s %-40s %s\n", g.Method, g.Path, g.Name)
			}
			return nil
		},
	}
}
