package main

import (
	"fmt"
	"strings"

	"github.com/pbaille/calldesk/internal/api"
	"github.com/spf13/cobra"
)

func (a *app) suggestedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggested",
		Short: "Manage the suggested task catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List suggested tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.client()
			items, err := c.ListSuggestedTasks(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No suggested tasks yet.")
				return nil
			}

			tags, err := c.ListTags(ctx)
			if err != nil {
				return err
			}
			names := tagNames(tags)
			for _, item := range items {
				labels := make([]string, 0, len(item.Tags))
				for _, id := range item.Tags {
					if n, ok := names[id]; ok {
						labels = append(labels, n)
					}
				}
				fmt.Fprintf(out, "%s  %s", item.ID, truncate(item.Name, 50))
				if len(labels) > 0 {
					fmt.Fprintf(out, "  [%s]", strings.Join(labels, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	})

	var addTags []string
	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a suggested task (admin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}
			item, err := c.CreateSuggestedTask(cmd.Context(), strings.Join(args, " "), addTags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created suggested task: %s\n", item.ID)
			return nil
		},
	}
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "tag id (repeatable)")
	cmd.AddCommand(addCmd)

	var (
		name      string
		tags      []string
		clearTags bool
	)
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Rename a suggested task or replace its tags (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}

			var req api.UpdateSuggestedTaskRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			switch {
			case clearTags:
				empty := []string{}
				req.Tags = &empty
			case cmd.Flags().Changed("tag"):
				req.Tags = &tags
			}

			item, err := c.UpdateSuggestedTask(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated suggested task: %s  %s\n", item.ID, item.Name)
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	updateCmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag id for the new tag set (repeatable)")
	updateCmd.Flags().BoolVar(&clearTags, "clear-tags", false, "remove every tag")
	updateCmd.MarkFlagsMutuallyExclusive("tag", "clear-tags")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a suggested task (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			if !requireAdmin(cmd, c) {
				return nil
			}
			if err := c.DeleteSuggestedTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted suggested task: %s\n", args[0])
			return nil
		},
	})

	return cmd
}
