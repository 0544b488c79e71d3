package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List and manage tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.client().ListTags(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags yet. An admin can add one with 'calldesk tags add'.")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintf(out, "%s  %s\n", t.ID, t.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Create a tag (admin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}
			tag, err := c.CreateTag(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tag: %s  %s\n", tag.ID, tag.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a tag (admin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}
			tag, err := c.RenameTag(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed tag: %s  %s\n", tag.ID, tag.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a tag (admin); calls keep their links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}
			if err := c.DeleteTag(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag: %s\n", args[0])
			return nil
		},
	})

	return cmd
}
