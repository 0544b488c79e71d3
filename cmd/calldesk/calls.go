package main

import (
	"fmt"
	"strings"

	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/client"
	"github.com/spf13/cobra"
)

func (a *app) callsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Log and manage calls",
	}

	cmd.AddCommand(a.callsListCmd())
	cmd.AddCommand(a.callsShowCmd())
	cmd.AddCommand(a.callsCreateCmd())
	cmd.AddCommand(a.callsUpdateCmd())
	cmd.AddCommand(a.callsDeleteCmd())
	cmd.AddCommand(a.callsSuggestTagsCmd())
	return cmd
}

func (a *app) callsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List calls, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := client.NewMirror(a.client())
			if err := m.Load(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(m.Calls) == 0 {
				fmt.Fprintln(out, "No calls yet. Use 'calldesk calls create' to log one.")
				return nil
			}

			for _, c := range m.Calls {
				fmt.Fprintf(out, "%s  %s  %s\n", c.ID, formatTime(c.UpdatedAt), truncate(c.Name, 60))
			}
			return nil
		},
	}
}

func (a *app) callsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a call with its tags, tasks and suggested tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.client()

			call, err := c.GetCall(ctx, args[0])
			if err != nil {
				return err
			}
			tags, err := c.ListTags(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCallDetail(out, call, tagNames(tags))

			suggestions, err := c.SuggestedTasksForCall(ctx, call.ID)
			if err != nil {
				return err
			}
			if len(suggestions) > 0 {
				fmt.Fprintln(out, "\nSuggested tasks:")
				for _, s := range suggestions {
					fmt.Fprintf(out, "  - %s\n", s.Name)
				}
			}
			return nil
		},
	}
}

func (a *app) callsCreateCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Log a new call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := client.NewMirror(a.client())
			call, err := m.CreateCall(cmd.Context(), strings.Join(args, " "), tags)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created call: %s\n", call.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag id to link (repeatable)")
	return cmd
}

func (a *app) callsUpdateCmd() *cobra.Command {
	var (
		name      string
		tags      []string
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Rename a call or replace its tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.UpdateCallRequest
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

			ctx := cmd.Context()
			c := a.client()
			call, err := c.UpdateCall(ctx, args[0], req)
			if err != nil {
				return err
			}
			allTags, err := c.ListTags(ctx)
			if err != nil {
				return err
			}

			printCallDetail(cmd.OutOrStdout(), call, tagNames(allTags))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new call name")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tag id for the new tag set (repeatable)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "remove every tag from the call")
	cmd.MarkFlagsMutuallyExclusive("tag", "clear-tags")
	return cmd
}

func (a *app) callsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a call and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().DeleteCall(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted call: %s\n", args[0])
			return nil
		},
	}
}

func (a *app) callsSuggestTagsCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest-tags [id]",
		Short: "Ask the classifier which existing tags fit a call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.client()
			m := client.NewMirror(c)
			if _, err := m.Open(ctx, args[0]); err != nil {
				return err
			}

			suggested, err := c.SuggestTags(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(suggested) == 0 {
				fmt.Fprintln(out, "No matching tags.")
				return nil
			}
			for _, t := range suggested {
				fmt.Fprintf(out, "  + %s (%s)\n", t.Name, t.ID)
			}

			if !apply {
				return nil
			}
			for _, t := range suggested {
				if err := m.AddTag(ctx, t.ID); err != nil {
					return fmt.Errorf("link tag %s: %w", t.Name, err)
				}
			}
			fmt.Fprintf(out, "Linked %d tag(s)\n", len(suggested))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "link the suggested tags to the call")
	return cmd
}
