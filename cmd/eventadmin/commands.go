package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"event_backend/internal/app/di"
)

func newMigrateCmd(withEnv envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if err := di.Migrate(e.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		}),
	}
}

func newPromoteCmd(withEnv envRunner) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Change the role of a user (ADMIN by default)",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			u, err := e.app.Auth.SetRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&role, "role", "ADMIN", "role to assign (ADMIN or USER)")
	return cmd
}

func newSetActiveCmd(withEnv envRunner, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: use + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			u, err := e.app.Auth.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			state := "inactive"
			if u.Active {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, state)
			return nil
		}),
	}
}

func newRemindCmd(withEnv envRunner) *cobra.Command {
	var within time.Duration
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for events starting soon",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			done := make(chan error, 1)
			go func() { done <- e.app.Dispatcher.Run(ctx) }()

			n, err := e.app.Registration.SendReminders(cmd.Context(), within)

			// 停止後もキューに残ったリマインダーは送信される
			cancel()
			if runErr := <-done; err == nil {
				err = runErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d reminders sent\n", n)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&within, "within", 24*time.Hour, "remind about events starting within this window")
	return cmd
}

func newReconcileCmd(withEnv envRunner) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "reconcile <eventID>",
		Short: "Compare an event's registered count with its registrations",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, e *env, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			report, err := e.app.Registration.Reconcile(cmd.Context(), uint(id), fix)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case report.Consistent():
				fmt.Fprintf(out, "event %d: consistent (%d)\n", report.EventID, report.Stored)
			case report.Repaired:
				fmt.Fprintf(out, "event %d: repaired (stored %d, derived %d)\n", report.EventID, report.Stored, report.Derived)
			default:
				fmt.Fprintf(out, "event %d: drift (stored %d, derived %d); rerun with --fix\n", report.EventID, report.Stored, report.Derived)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "set the stored count to the derived value")
	return cmd
}
