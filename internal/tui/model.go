// Package tui is the interactive chat screen: transcript, input line,
// loading indicator, transient notifications and slash commands.
package tui

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/abdul-hamid-achik/dashai/internal/ui/highlight"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// toastLifetime is how long a notification stays on screen
const toastLifetime = 4 * time.Second

// Chat is the conversation the screen drives.
type Chat interface {
	Send(ctx context.Context, input string) (agent.Reply, error)
	SetLocation(path string)
	Location() string
	SwitchSession(id string)
	Active() string
	Transcript(ctx context.Context) ([]session.Message, error)
	SetModel(id string) error
	Model() string
	Loading() bool
}

// Sessions manages the stored conversations.
type Sessions interface {
	EnsureDefault(ctx context.Context) (session.Session, error)
	Create(ctx context.Context, name string) (session.Session, error)
	Get(ctx context.Context, id string) (session.Session, error)
	List(ctx context.Context) ([]session.Info, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// BlockType represents the type of content block
type BlockType int

const (
	BlockUser      BlockType = iota // User message
	BlockAssistant                  // Assistant response
	BlockInfo                       // Command output
	BlockError                      // Error message
	BlockRaw                        // Highlighted raw model output
)

// ContentBlock represents a piece of content in the conversation
type ContentBlock struct {
	Type    BlockType
	Content string
}

type toast struct {
	level   agent.NotifyLevel
	text    string
	expires time.Time
}

// Model is the main Bubble Tea model for the TUI
type Model struct {
	ctx      context.Context
	chat     Chat
	sessions Sessions
	log      *logging.Logger

	// Dimensions
	width  int
	height int
	ready  bool

	sessionName string
	blocks      []ContentBlock
	streaming   string // Reply text streamed so far for the active session
	lastRaw     string // Unprocessed model output of the last reply
	loading     bool
	toasts      []toast
	quitting    bool

	// Components
	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model

	renderer    *glamour.TermRenderer
	highlighter *highlight.Highlighter
	now         func() time.Time
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, chat Chat, sessions Sessions, log *logging.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your projects, or type /help"
	ti.Prompt = "" // We render our own prompt in the footer
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	return Model{
		ctx:         ctx,
		chat:        chat,
		sessions:    sessions,
		log:         logging.Or(log).WithPrefix("tui"),
		textInput:   ti,
		spinner:     sp,
		viewport:    viewport.New(80, 20),
		highlighter: highlight.New(true),
		now:         time.Now,
	}
}

// Init loads the transcript of the active session
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTranscript(m.chat.Active()))
}

// AddBlock adds a content block to the conversation
func (m *Model) AddBlock(block ContentBlock) {
	m.blocks = append(m.blocks, block)
	m.refresh()
}

// dropPendingInput removes the trailing user block for input, which the
// controller refused to store.
func (m *Model) dropPendingInput(input string) {
	last := len(m.blocks) - 1
	if last >= 0 && m.blocks[last].Type == BlockUser && m.blocks[last].Content == input {
		m.blocks = m.blocks[:last]
	}
}

// Blocks returns the visible conversation
func (m Model) Blocks() []ContentBlock {
	return m.blocks
}

// IsQuitting returns true if the model is quitting
func (m Model) IsQuitting() bool {
	return m.quitting
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoBottom()
}

func (m *Model) pushToast(level agent.NotifyLevel, text string) tea.Cmd {
	m.toasts = append(m.toasts, toast{level: level, text: text, expires: m.now().Add(toastLifetime)})
	return tea.Tick(toastLifetime, func(t time.Time) tea.Msg { return expireToastsMsg{now: t} })
}

func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// sendCmd runs one turn off the UI goroutine
func (m Model) sendCmd(input string) tea.Cmd {
	ctx, chat := m.ctx, m.chat
	return func() tea.Msg {
		reply, err := chat.Send(ctx, input)
		return replyMsg{input: input, reply: reply, err: err}
	}
}

func (m Model) loadTranscript(id string) tea.Cmd {
	ctx, chat, sessions := m.ctx, m.chat, m.sessions
	return func() tea.Msg {
		sess, err := sessions.Get(ctx, id)
		if err != nil {
			return transcriptMsg{sessionID: id, err: err}
		}
		chat.SwitchSession(id)
		messages, err := chat.Transcript(ctx)
		return transcriptMsg{sessionID: id, name: sess.Name, messages: messages, err: err}
	}
}
