package tui

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

// Notifier forwards notifications to a running program as toasts. Before a
// program is attached, notifications go to the fallback.
type Notifier struct {
	mu       sync.Mutex
	program  *tea.Program
	fallback agent.Notifier
}

// NewNotifier creates a notifier with a fallback used outside the TUI.
func NewNotifier(fallback agent.Notifier) *Notifier {
	return &Notifier{fallback: fallback}
}

// Notify implements agent.Notifier.
func (n *Notifier) Notify(level agent.NotifyLevel, message string) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		p.Send(toastMsg{level: level, text: message})
		return
	}
	if n.fallback != nil {
		n.fallback.Notify(level, message)
	}
}

func (n *Notifier) attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// Streamer is a Chat whose replies can be streamed.
type Streamer interface {
	SetStreaming(enabled bool, sink agent.StreamSink)
}

// RunConfig contains configuration for running the TUI
type RunConfig struct {
	Chat     Chat
	Sessions Sessions
	Notifier *Notifier
	Stream   bool
	Logger   *logging.Logger
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, cfg RunConfig) error {
	if !IsTTYAvailable() {
		return fmt.Errorf("TUI mode requires a terminal")
	}

	model := NewModel(ctx, cfg.Chat, cfg.Sessions, cfg.Logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Notifier != nil {
		cfg.Notifier.attach(program)
		defer cfg.Notifier.attach(nil)
	}
	if s, ok := cfg.Chat.(Streamer); ok {
		s.SetStreaming(cfg.Stream, func(sessionID, text string) {
			program.Send(streamChunkMsg{sessionID: sessionID, text: text})
		})
		defer s.SetStreaming(false, nil)
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// IsTTYAvailable checks if a TTY is available for TUI mode
func IsTTYAvailable() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
