package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/client"
	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const requestTimeout = 15 * time.Second

var (
	listSearch   string
	listPriority string
)

func newSession() (*client.Session, error) {
	cfg := config.LoadClient()
	api := client.NewAPI(cfg.APIURL, nil)
	return client.NewSession(api, client.NewFileTokenStore(cfg.TokenFile), zap.NewNop())
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func printTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tTEXT")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Priority, t.Text)
	}
	tw.Flush()
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		user, err := s.Register(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d). Please login.\n", user.Email, user.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and remember the session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if err := s.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), s.Tasks())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return s.Logout()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		if !s.LoggedIn() {
			return client.ErrNotLoggedIn
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if err := s.SetView(ctx, listSearch, listPriority); err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), s.Tasks())
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task with Normal priority",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		task, err := s.Add(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if task.ID != 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d\n", task.ID)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Replace the text of a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		return s.Edit(ctx, id, strings.Join(args[1:], " "))
	},
}

var priorityCmd = &cobra.Command{
	Use:   "priority <id> [Normal|High]",
	Short: "Set or toggle the priority of a task",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		if len(args) == 2 {
			p := args[1]
			return s.Update(ctx, id, model.TaskPatch{Priority: &p})
		}
		// для переключения нужна текущая версия задачи
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		return s.TogglePriority(ctx, id)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd)
		defer cancel()

		return s.Remove(ctx, id)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive substring to match")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", model.PriorityAll, "All, Normal or High")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, listCmd, addCmd, editCmd, priorityCmd, rmCmd)
}
