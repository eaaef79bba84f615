package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	token      string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dashai",
		Short: "Chat assistant for your project dashboard",
		Long: `dashai - chat assistant for your project dashboard

Ask about your projects, tasks and team in plain language. The assistant sees
the page you are on, searches your knowledge base, and can create or update
projects, create tasks and save notes for you.

Quick Start:
  dashai chat                          # Open the interactive chat
  dashai ask "what is overdue?"        # One-shot question
  dashai models                        # List available models

Config Files (in priority order):
  ./dashai.yaml
  ./.dashai/config.yaml
  ~/.config/dashai/config.yaml

Environment:
  OPENROUTER_API_KEY    completion key (llm.provider: openrouter)
  ANTHROPIC_API_KEY     completion key (llm.provider: anthropic)
  DASHAI_BACKEND_KEY    backend API key
  DASHAI_BACKEND_URL    backend base URL
  DASHAI_USER_ID        user the knowledge base belongs to
  DASHAI_LOG_LEVEL      console log level (debug, info, warn, error)`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: search the standard locations)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "Completion API key (overrides the provider's environment variable)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.SetVersionTemplate("dashai version {{.Version}}\n")

	cmd.AddCommand(
		newChatCmd(opts),
		newAskCmd(opts),
		newModelsCmd(opts),
		newSessionsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dashai version %s\n", Version)
		},
	}
}
