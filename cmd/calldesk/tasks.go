package main

import (
	"fmt"
	"strings"

	"github.com/pbaille/calldesk/internal/api"
	"github.com/pbaille/calldesk/internal/client"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Track follow-up tasks on calls",
	}

	cmd.AddCommand(a.tasksListCmd())
	cmd.AddCommand(a.tasksAddCmd())
	cmd.AddCommand(a.tasksUpdateCmd())
	cmd.AddCommand(a.tasksDeleteCmd())
	return cmd
}

func (a *app) tasksListCmd() *cobra.Command {
	var callID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			var (
				tasks []domain.Task
				err   error
			)
			if callID != "" {
				tasks, err = c.ListTasksForCall(cmd.Context(), callID)
			} else {
				tasks, err = c.ListTasks(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			for _, t := range tasks {
				printTask(out, t)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&callID, "call", "c", "", "only tasks of this call")
	return cmd
}

func (a *app) tasksAddCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "add [callId] [name]",
		Short: "Add a task to a call",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParseTaskStatusName(status)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			m := client.NewMirror(a.client())
			if _, err := m.Open(ctx, args[0]); err != nil {
				return err
			}
			task, err := m.AddTask(ctx, strings.Join(args[1:], " "), st)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added task: %s (%s)\n", task.ID, task.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "open", "open, in-progress or completed")
	return cmd
}

func (a *app) tasksUpdateCmd() *cobra.Command {
	var name, status string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Rename a task or change its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.UpdateTaskRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("status") {
				st, err := domain.ParseTaskStatusName(status)
				if err != nil {
					return err
				}
				req.Status = &st
			}

			ctx := cmd.Context()
			c := a.client()
			current, err := c.GetTask(ctx, args[0])
			if err != nil {
				return err
			}

			m := client.NewMirror(c)
			if _, err := m.Open(ctx, current.CallID); err != nil {
				return err
			}
			task, err := m.UpdateTask(ctx, current.ID, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Updated task:")
			printTask(out, *task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new task name")
	cmd.Flags().StringVarP(&status, "status", "s", "", "open, in-progress or completed")
	return cmd
}

func (a *app) tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.client()
			current, err := c.GetTask(ctx, args[0])
			if err != nil {
				return err
			}

			m := client.NewMirror(c)
			if _, err := m.Open(ctx, current.CallID); err != nil {
				return err
			}
			if err := m.RemoveTask(ctx, current.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task: %s\n", current.ID)
			return nil
		},
	}
}
