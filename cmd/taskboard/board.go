package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/models"
)

type boardFlags struct {
	api       string
	email     string
	password  string
	projectID int64
	verbose   bool
}

func boardCmd() *cobra.Command {
	f := &boardFlags{}
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Work with a project board through the REST API",
	}
	cmd.PersistentFlags().StringVar(&f.api, "api", envOr("TASKBOARD_API", "http://localhost:8080"), "API base URL")
	cmd.PersistentFlags().StringVar(&f.email, "email", os.Getenv("TASKBOARD_EMAIL"), "login email (or TASKBOARD_TOKEN)")
	cmd.PersistentFlags().StringVar(&f.password, "password", os.Getenv("TASKBOARD_PASSWORD"), "login password")
	cmd.PersistentFlags().Int64VarP(&f.projectID, "project", "p", 0, "project id")
	cmd.PersistentFlags().BoolVar(&f.verbose, "verbose", false, "log board activity")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(boardShowCmd(f), boardMoveCmd(f), boardDeleteCmd(f))
	return cmd
}

func boardShowCmd(f *boardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := f.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printColumns(cmd.OutOrStdout(), b.Columns())
			return nil
		},
	}
}

func boardMoveCmd(f *boardFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <target> [<task-id> <target>...]",
		Short: "Drop tasks onto a column (TODO, IN_PROGRESS, DONE) or onto another task",
		Long: `Each pair is one drag and drop. All drops are issued before any reply is
awaited, so several moves of the same task behave like quick successive drags.
Failed moves are rolled back and reported.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <task-id> <target> pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			b, err := f.open(cmd.Context(), cmd.ErrOrStderr(), board.WithNotify(func(n board.Notice) {
				fmt.Fprintln(cmd.ErrOrStderr(), "!", n)
			}))
			if err != nil {
				return err
			}

			for i := 0; i < len(args); i += 2 {
				id, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					return fmt.Errorf("task id %q: %w", args[i], err)
				}
				target, err := board.ParseTarget(args[i+1])
				if err != nil {
					return err
				}
				b.DragStart(id)
				sent, err := b.Drop(cmd.Context(), id, target)
				if err != nil {
					return err
				}
				if !sent {
					fmt.Fprintf(out, "task %d: already in place, nothing sent\n", id)
				}
			}
			b.Wait()

			printColumns(out, b.Columns())
			if n := len(b.Notices()); n > 0 {
				return fmt.Errorf("%d move(s) failed", n)
			}
			return nil
		},
	}
}

func boardDeleteCmd(f *boardFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id %q: %w", args[0], err)
			}
			b, err := f.open(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			confirm := func(t models.Task) bool {
				if yes {
					return true
				}
				return ask(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete task %d %q? [y/N] ", t.ID, t.Title))
			}
			deleted, err := b.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "task %d deleted\n", id)
			}
			printColumns(cmd.OutOrStdout(), b.Columns())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// open authenticates and loads the project's tasks into a board.
func (f *boardFlags) open(ctx context.Context, logOut io.Writer, opts ...board.Option) (*board.Board, error) {
	api := client.New(f.api, client.WithToken(os.Getenv("TASKBOARD_TOKEN")))
	if f.email != "" {
		if _, err := api.Login(ctx, f.email, f.password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	p, err := api.ProjectTasks(ctx, f.projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", f.projectID, err)
	}
	if f.verbose {
		opts = append(opts, board.WithLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return board.New(api, p.Tasks, opts...), nil
}

func printColumns(w io.Writer, cols []board.Column) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range cols {
		fmt.Fprintf(tw, "%s (%d)\n", col.Title, len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Fprintf(tw, "  #%d\t%s\t%s\n", t.ID, t.Title, t.Priority)
		}
	}
	_ = tw.Flush()
}

func ask(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
