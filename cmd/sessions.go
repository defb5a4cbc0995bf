package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/koopa0/rca-agent/internal/app"
	"github.com/koopa0/rca-agent/internal/config"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage chat sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				sessions, err := a.Sessions.List(ctx)
				if err != nil {
					return fmt.Errorf("listing sessions: %w", err)
				}
				if len(sessions) == 0 {
					fmt.Println("No chat sessions.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
				for _, sess := range sessions {
					fmt.Fprintf(w, "%s\t%s\t%s\n",
						sess.ID, sess.Title, sess.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a chat session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}
			return withApp(func(ctx context.Context, a *app.App) error {
				if err := a.Sessions.Delete(ctx, id); err != nil {
					return fmt.Errorf("deleting session: %w", err)
				}
				fmt.Printf("Deleted session %s\n", id)
				return nil
			})
		},
	}
}

// withApp sets up the application, runs fn, and tears down.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	logger := newLogger(false, false)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}
