package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the role hint carried by the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			out := cmd.OutOrStdout()

			if c.Token() == "" {
				fmt.Fprintln(out, "No token set. Admin commands need a token with the ADMIN role.")
				return nil
			}

			role := c.Role()
			if role == "" {
				role = "unknown"
			}
			fmt.Fprintf(out, "Role: %s\n", role)
			fmt.Fprintf(out, "API:  %s\n", a.cfg.APIBaseURL)
			return nil
		},
	}
}
