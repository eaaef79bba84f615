package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

const helpText = `Commands:
  /goto <path>      set the page you are looking at (e.g. /projects/<id>, /rag, /calendar)
  /model [id]       show the model catalog or switch model
  /raw              show the unprocessed output of the last reply
  /new [name]       start a new conversation
  /sessions         list conversations
  /switch <n|id>    open a conversation from the list
  /rename <name>    rename the current conversation
  /delete           delete the current conversation
  /quit             exit`

// runCommand executes a slash command
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/help":
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: helpText})
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/goto":
		if arg == "" {
			m.AddBlock(ContentBlock{Type: BlockInfo, Content: "Current page: " + m.chat.Location()})
			return m, nil
		}
		if !strings.HasPrefix(arg, "/") {
			arg = "/" + arg
		}
		m.chat.SetLocation(arg)
		return m, m.pushToast(agent.NotifyInfo, "Now viewing "+arg)

	case "/model":
		if arg == "" {
			m.AddBlock(ContentBlock{Type: BlockInfo, Content: formatModels(llm.Models(), m.chat.Model())})
			return m, nil
		}
		if err := m.chat.SetModel(arg); err != nil {
			return m, m.pushToast(agent.NotifyError, dasherr.GetUserMessage(err))
		}
		return m, m.pushToast(agent.NotifySuccess, "Model set to "+llm.DisplayName(arg))

	case "/raw":
		if m.lastRaw == "" {
			return m, m.pushToast(agent.NotifyInfo, "No reply yet")
		}
		m.AddBlock(ContentBlock{Type: BlockRaw, Content: m.lastRaw})
		return m, nil

	case "/new":
		return m, m.newSession(arg)

	case "/sessions":
		return m, m.listSessions()

	case "/switch":
		if arg == "" {
			return m, m.pushToast(agent.NotifyWarning, "Usage: /switch <number or id>")
		}
		return m, m.switchSession(arg)

	case "/rename":
		if arg == "" {
			return m, m.pushToast(agent.NotifyWarning, "Usage: /rename <name>")
		}
		if err := m.sessions.Rename(m.ctx, m.chat.Active(), arg); err != nil {
			return m, m.pushToast(agent.NotifyError, dasherr.GetUserMessage(err))
		}
		m.sessionName = arg
		return m, m.pushToast(agent.NotifySuccess, "Conversation renamed")

	case "/delete":
		return m, m.deleteSession()
	}

	return m, m.pushToast(agent.NotifyWarning, fmt.Sprintf("Unknown command %s, try /help", name))
}

func (m Model) newSession(name string) tea.Cmd {
	ctx, sessions := m.ctx, m.sessions
	load := m.loadTranscript
	return func() tea.Msg {
		sess, err := sessions.Create(ctx, name)
		if err != nil {
			return transcriptMsg{err: err}
		}
		return load(sess.ID)()
	}
}

func (m Model) listSessions() tea.Cmd {
	ctx, sessions := m.ctx, m.sessions
	return func() tea.Msg {
		list, err := sessions.List(ctx)
		return sessionsMsg{sessions: list, err: err}
	}
}

// switchSession resolves ref as a 1-based position in the session list or
// an id prefix.
func (m Model) switchSession(ref string) tea.Cmd {
	ctx, sessions := m.ctx, m.sessions
	load := m.loadTranscript
	return func() tea.Msg {
		list, err := sessions.List(ctx)
		if err != nil {
			return transcriptMsg{err: err}
		}
		id, ok := resolveSession(list, ref)
		if !ok {
			return transcriptMsg{err: dasherr.SessionNotFound(ref)}
		}
		return load(id)()
	}
}

func (m Model) deleteSession() tea.Cmd {
	ctx, sessions, id := m.ctx, m.sessions, m.chat.Active()
	load := m.loadTranscript
	return func() tea.Msg {
		if err := sessions.Delete(ctx, id); err != nil {
			return transcriptMsg{err: err}
		}
		def, err := sessions.EnsureDefault(ctx)
		if err != nil {
			return transcriptMsg{err: err}
		}
		return load(def.ID)()
	}
}

func resolveSession(list []session.Info, ref string) (string, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(list) {
			return list[n-1].ID, true
		}
		return "", false
	}
	for _, info := range list {
		if strings.HasPrefix(info.ID, ref) {
			return info.ID, true
		}
	}
	return "", false
}

func formatSessions(list []session.Info, active string) string {
	if len(list) == 0 {
		return "No conversations yet."
	}
	var b strings.Builder
	b.WriteString("Conversations:")
	for i, info := range list {
		marker := " "
		if info.ID == active {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n%s %d. %s  (%d messages, %s)", marker, i+1, info.Name, info.MessageCount, session.FormatRelativeTime(info.LastActivity))
		if info.Preview != "" {
			fmt.Fprintf(&b, "\n     %s", info.Preview)
		}
	}
	return b.String()
}

func formatModels(models []llm.ModelInfo, current string) string {
	var b strings.Builder
	b.WriteString("Models:")
	for _, info := range models {
		marker := " "
		if info.ID == current {
			marker = "*"
		}
		fmt.Fprintf(&b, "\n%s %-34s %-8s %s", marker, info.ID, info.Tier, info.Name)
	}
	return b.String()
}
