package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pbaille/calldesk/internal/client"
	"github.com/pbaille/calldesk/internal/config"
	"github.com/pbaille/calldesk/internal/domain"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the settings every subcommand reads; persistent flags write into it
type app struct {
	cfg *config.Config
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:          "calldesk",
		Short:        "Call center desk: calls, tags and follow-up tasks",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "sqlite database path (serve)")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres connection string (serve)")
	flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.callsCmd())
	rootCmd.AddCommand(a.tagsCmd())
	rootCmd.AddCommand(a.tasksCmd())
	rootCmd.AddCommand(a.suggestedCmd())
	rootCmd.AddCommand(a.whoamiCmd())

	return rootCmd
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.APIBaseURL, a.cfg.Token)
}

// requireAdmin prints a hint and reports false unless the token carries the ADMIN role
func requireAdmin(cmd *cobra.Command, c *client.Client) bool {
	if c.IsAdmin() {
		return true
	}
	fmt.Fprintln(cmd.OutOrStdout(), "This command is for admins. Pass --token (or set CALLDESK_TOKEN) with an ADMIN role.")
	return false
}

func tagNames(tags []domain.Tag) map[string]string {
	names := make(map[string]string, len(tags))
	for _, t := range tags {
		names[t.ID] = t.Name
	}
	return names
}

func printCallDetail(w io.Writer, call *domain.CallDetail, names map[string]string) {
	fmt.Fprintf(w, "ID:      %s\n", call.ID)
	fmt.Fprintf(w, "Name:    %s\n", call.Name)
	fmt.Fprintf(w, "Created: %s\n", formatTime(call.CreatedAt))
	fmt.Fprintf(w, "Updated: %s\n", formatTime(call.UpdatedAt))

	if len(call.Tags) > 0 {
		labels := make([]string, len(call.Tags))
		for i, id := range call.Tags {
			if name, ok := names[id]; ok {
				labels[i] = name
			} else {
				labels[i] = id
			}
		}
		fmt.Fprintf(w, "Tags:    %s\n", strings.Join(labels, ", "))
	}

	if len(call.Tasks) == 0 {
		fmt.Fprintln(w, "\nNo tasks.")
		return
	}
	fmt.Fprintln(w, "\nTasks:")
	for _, t := range call.Tasks {
		printTask(w, t)
	}
}

func printTask(w io.Writer, t domain.Task) {
	fmt.Fprintf(w, "  %s  %-12s %s\n", t.ID, t.Status, truncate(t.Name, 60))
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
