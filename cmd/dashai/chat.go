package main

import (
	"fmt"

	"github.com/abdul-hamid-achik/dashai/internal/tui"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var page string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Long: `Open the interactive chat screen.

Type a message and press enter. Commands start with a slash; /help lists them.
Use /goto to tell the assistant which dashboard page you are looking at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.IsTTYAvailable() {
				return fmt.Errorf("chat needs a terminal; use 'dashai ask' for piped input")
			}

			notifier := tui.NewNotifier(newOutput(cmd))
			a, err := openApp(cmd, opts, appOptions{quiet: true, chat: true, notifier: notifier, onWait: toastWait(notifier)})
			if err != nil {
				return err
			}
			defer a.Close()

			if page != "" {
				a.ctrl.SetLocation(page)
			}
			a.watchConfig(cmd.Context())

			return tui.Run(cmd.Context(), tui.RunConfig{
				Chat:     a.ctrl,
				Sessions: a.store,
				Notifier: notifier,
				Stream:   a.cfg.LLM.Stream,
				Logger:   a.log,
			})
		},
	}

	cmd.Flags().StringVar(&page, "page", "", "Dashboard page to start on (e.g. /projects/<id>)")
	return cmd
}
