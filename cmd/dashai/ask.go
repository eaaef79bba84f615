package main

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		page      string
		sessionID string
		model     string
		raw       bool
		stream    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: `Send one message to the assistant and print the reply.

The turn is recorded in the default conversation unless --session is given,
and tool calls in the reply are carried out just as in the chat screen.`,
		Example: `  dashai ask "Create a project named Alpha"
  dashai ask --page /projects/p1 "who is on this team?"
  dashai ask --raw "add a task to review the budget"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, appOptions{chat: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if sessionID != "" {
				if _, err := a.store.Get(ctx, sessionID); err != nil {
					return err
				}
				a.ctrl.SwitchSession(sessionID)
			}
			if page != "" {
				a.ctrl.SetLocation(page)
			}
			if model != "" {
				if err := a.ctrl.SetModel(model); err != nil {
					return err
				}
			}
			if stream && !raw {
				a.ctrl.SetStreaming(true, func(_ string, text string) { a.out.StreamText(text) })
			}
			if opts.verbose {
				a.out.ModelInfo(a.ctrl.Model())
			}

			reply, err := a.ctrl.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			switch {
			case raw:
				payload, _ := agent.FindPayload(reply.Raw)
				a.out.RawReply(reply.Raw, payload)
			case stream:
				a.out.StreamDone()
				// Streamed text is the raw model output; show what was done with it.
				if reply.Message.Content != reply.Raw {
					a.out.Reply(reply.Message.Content)
				}
			default:
				a.out.Reply(reply.Message.Content)
			}

			if reply.Err != nil {
				return fmt.Errorf("turn did not complete: %s", dasherr.GetUserMessage(reply.Err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&page, "page", "", "Dashboard page the question is about (e.g. /projects/<id>, /rag)")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Conversation to continue (default: the default conversation)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id from 'dashai models'")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the unprocessed model output with the tool-call payload highlighted")
	cmd.Flags().BoolVar(&stream, "stream", false, "Print the reply as it arrives")
	return cmd
}
