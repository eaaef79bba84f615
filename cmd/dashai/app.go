package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/backend"
	"github.com/abdul-hamid-achik/dashai/internal/config"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/abdul-hamid-achik/dashai/internal/tools"
	"github.com/abdul-hamid-achik/dashai/internal/ui"
	"github.com/abdul-hamid-achik/dashai/internal/workspace"
	"github.com/spf13/cobra"
)

// app holds the wired components of one command invocation
type app struct {
	cfg   *config.Config
	log   *logging.Logger
	out   *ui.OutputHandler
	store *session.Store

	client    *backend.Client
	workspace *workspace.Workspace
	retrieval *agent.RetrievalAugmenter
	ctrl      *agent.Controller
}

// appOptions select how much of the stack a command needs
type appOptions struct {
	// quiet keeps log output off the console (the TUI owns the terminal)
	quiet bool
	// chat wires the backend, the completion client and the controller
	chat bool
	// notifier receives turn notifications; defaults to the output handler
	notifier agent.Notifier
	// onWait is told about rate-limit waits; defaults to the CLI spinner
	onWait llm.WaitCallback
}

// newOutput writes to the command's streams, styled only on a real stdout.
func newOutput(cmd *cobra.Command) *ui.OutputHandler {
	if cmd.OutOrStdout() == io.Writer(os.Stdout) {
		return ui.NewOutputHandler()
	}
	return ui.NewOutputHandlerWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
}

// openApp loads config and logging, opens the session store and, for chat
// commands, builds the controller.
func openApp(cmd *cobra.Command, opts *rootOptions, ao appOptions) (*app, error) {
	ctx := cmd.Context()
	out := newOutput(cmd)

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Path:           opts.configPath,
		APIKeyOverride: opts.token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.ConfigFromEnv().WithVerbose(opts.verbose).WithQuiet(ao.quiet)
	log, err := logging.Init(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log.Debug("dashai started", logging.F("command", cmd.Name()), logging.Path(cfg.ConfigPath()))

	store, err := session.Open(ctx, cfg.Store.Path, cfg.Chat.DefaultSession)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	a := &app{cfg: cfg, log: log, out: out, store: store}
	if !ao.chat {
		return a, nil
	}

	a.client = backend.NewClient(cfg.Backend, log)
	a.workspace = workspace.New(a.client, log)
	if err := a.workspace.Load(ctx); err != nil {
		// The assistant still works without dashboard data; mutations will
		// surface their own errors.
		log.Warn("failed to load workspace", logging.Error(err))
		out.Warning("could not load dashboard data: " + err.Error())
	}

	if cfg.Retrieval.Enabled {
		a.retrieval = agent.NewRetrievalAugmenter(a.client, cfg.Retrieval.Limit, cfg.Retrieval.Timeout, log)
	}

	notifier := ao.notifier
	if notifier == nil {
		notifier = out
	}
	onWait := ao.onWait
	if onWait == nil {
		onWait = ui.NewSpinner(out).Wait
	}

	def, err := store.EnsureDefault(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}

	a.ctrl = agent.New(agent.Config{
		LLM:             llm.New(cfg, log, onWait),
		Options:         llm.OptionsFromConfig(cfg.LLM),
		Tools:           tools.NewRegistry(tools.Defaults{DocumentTitle: cfg.Chat.DocumentTitle, DocumentSource: cfg.Chat.DocumentSource}),
		Workspace:       a.workspace,
		Retrieval:       a.retrieval,
		Sessions:        store,
		Notifier:        notifier,
		Logger:          log,
		UserID:          a.client.UserID(),
		SessionID:       def.ID,
		HistoryLimit:    cfg.Chat.HistoryLimit,
		SampleDocuments: cfg.Chat.SampleDocuments,
		Stream:          cfg.LLM.Stream,
	})
	return a, nil
}

// watchConfig applies model, sampling and retrieval changes from the config
// file to the running controller.
func (a *app) watchConfig(ctx context.Context) {
	path := a.cfg.ConfigPath()
	if path == "" || a.ctrl == nil {
		return
	}
	err := config.Watch(ctx, path, func(next *config.Config) {
		opts := llm.OptionsFromConfig(next.LLM)
		if _, ok := llm.Lookup(opts.Model); !ok {
			a.log.Warn("ignoring unknown model from config", logging.Model(opts.Model))
			opts.Model = a.ctrl.Model()
		}
		a.ctrl.SetOptions(opts)
		a.retrieval.Configure(next.Retrieval.Limit, next.Retrieval.Timeout)
	})
	if err != nil {
		a.log.Warn("config hot reload disabled", logging.Path(path), logging.Error(err))
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// toastWait reports rate-limit waits as notifications instead of drawing a
// spinner, then sleeps.
func toastWait(n agent.Notifier) llm.WaitCallback {
	return func(ctx context.Context, info llm.WaitInfo) error {
		if info.Duration >= time.Second {
			n.Notify(agent.NotifyWarning, fmt.Sprintf("Rate limited (%s), retrying in %s", info.Reason, info.Duration.Round(time.Second)))
		}
		t := time.NewTimer(info.Duration)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}
