package tui

import (
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Header: 1 line, footer: status bar + input line, plus the toast area
const chromeHeight = 4

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-chromeHeight, 1)
		m.textInput.Width = max(m.width-4, 10)
		if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(max(m.width-4, 20))); err == nil {
			m.renderer = r
		}
		m.ready = true
		m.refresh()
		return m, nil

	case replyMsg:
		return m.handleReply(msg)

	case streamChunkMsg:
		if msg.sessionID == m.chat.Active() {
			m.streaming += msg.text
			m.refresh()
		}
		return m, nil

	case toastMsg:
		return m, m.pushToast(msg.level, msg.text)

	case expireToastsMsg:
		m.expireToasts(msg.now)
		return m, nil

	case transcriptMsg:
		if msg.err != nil {
			return m, m.pushToast(agent.NotifyError, dasherr.GetUserMessage(msg.err))
		}
		m.sessionName = msg.name
		m.blocks = blocksFromTranscript(msg.messages)
		m.streaming = ""
		m.lastRaw = ""
		m.loading = m.chat.Loading()
		m.refresh()
		return m, nil

	case sessionsMsg:
		if msg.err != nil {
			return m, m.pushToast(agent.NotifyError, dasherr.GetUserMessage(msg.err))
		}
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: formatSessions(msg.sessions, m.chat.Active())})
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, nil
		}
		m.textInput.Reset()
		if strings.HasPrefix(input, "/") {
			return m.runCommand(input)
		}
		return m.submit(input)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// submit starts a turn. The controller rejects a second turn while one is
// outstanding; the check here only avoids a round trip.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, m.pushToast(agent.NotifyWarning, "Still waiting for the previous reply")
	}
	m.loading = true
	m.streaming = ""
	m.AddBlock(ContentBlock{Type: BlockUser, Content: input})
	return m, tea.Batch(m.sendCmd(input), m.spinner.Tick)
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.loading = m.chat.Loading()
	m.streaming = ""

	if msg.err != nil {
		if dasherr.HasCode(msg.err, dasherr.CodeTurnInFlight) || dasherr.HasCode(msg.err, dasherr.CodeEmptyInput) {
			m.dropPendingInput(msg.input)
			m.refresh()
			return m, m.pushToast(agent.NotifyWarning, dasherr.GetUserMessage(msg.err))
		}
		m.log.Error("turn failed", logging.Error(msg.err))
		m.AddBlock(ContentBlock{Type: BlockError, Content: dasherr.GetUserMessage(msg.err)})
		return m, nil
	}

	if msg.reply.Discarded {
		m.refresh()
		return m, m.pushToast(agent.NotifyInfo, "A reply arrived for another conversation and was saved there")
	}

	m.lastRaw = msg.reply.Raw
	m.AddBlock(ContentBlock{Type: BlockAssistant, Content: msg.reply.Message.Content})
	return m, nil
}

func blocksFromTranscript(messages []session.Message) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(messages))
	for _, msg := range messages {
		t := BlockAssistant
		if msg.Role == session.RoleUser {
			t = BlockUser
		}
		blocks = append(blocks, ContentBlock{Type: t, Content: msg.Content})
	}
	return blocks
}
