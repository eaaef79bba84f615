package main

import (
	"github.com/abdul-hamid-achik/dashai/internal/config"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/spf13/cobra"
)

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Long: `List the model catalog. The configured default is marked with '*'.
Switch models with --model on 'dashai ask' or /model in the chat screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := config.DefaultConfig().LLM.Model
			if cfg, err := config.LoadWithOptions(config.LoadOptions{Path: opts.configPath, SkipCreate: true}); err == nil {
				current = cfg.LLM.Model
			}

			out := newOutput(cmd)
			out.Models(llm.Models(), current)
			if _, ok := llm.Lookup(current); !ok {
				out.Warning("configured model " + current + " is not in the catalog")
			}
			return nil
		},
	}
}
