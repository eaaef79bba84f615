package main

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/abdul-hamid-achik/dashai/internal/ui"
	"github.com/spf13/cobra"
)

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage conversations",
	}
	cmd.AddCommand(
		newSessionsListCmd(opts),
		newSessionsNewCmd(opts),
		newSessionsShowCmd(opts),
		newSessionsRenameCmd(opts),
		newSessionsDeleteCmd(opts),
	)
	return cmd
}

func newSessionsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range list {
				name := info.Name
				if info.Protected {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s  %-28s %3d messages  %s\n", info.ID, name, info.MessageCount, session.FormatRelativeTime(info.LastActivity))
				if info.Preview != "" {
					fmt.Fprintf(w, "    %s\n", info.Preview)
				}
			}
			return nil
		},
	}
}

func newSessionsNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new conversation",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.store.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Created %q (%s)", sess.Name, sess.ID))
			return nil
		},
	}
}

func newSessionsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			messages, err := a.store.Messages(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}
			a.out.Header(sess.Name)
			for _, msg := range messages {
				if msg.Role == session.RoleUser {
					fmt.Fprintf(cmd.OutOrStdout(), "> %s\n\n", msg.Content)
					continue
				}
				a.out.Reply(msg.Content)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func newSessionsRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Rename(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			a.out.Success("Conversation renamed")
			return nil
		},
	}
}

func newSessionsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				input := ui.NewInputHandlerWithReader(cmd.InOrStdin(), cmd.ErrOrStderr())
				if !input.Confirm(fmt.Sprintf("Delete %q?", sess.Name)) {
					a.out.Info("Cancelled")
					return nil
				}
			}
			if err := a.store.Delete(cmd.Context(), sess.ID); err != nil {
				return err
			}
			a.out.Success("Conversation deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
