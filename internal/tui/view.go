package tui

import (
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/charmbracelet/lipgloss"
)

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	parts := []string{m.renderHeader(), m.viewport.View()}
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := headerTitleStyle.Render("dashai")
	name := m.sessionName
	if name == "" {
		name = "…"
	}
	info := dimStyle.Render(" · " + name + " · " + llm.DisplayName(m.chat.Model()) + " · " + m.chat.Location())
	return headerStyle.Width(max(m.width, 1)).Render(title + info)
}

func (m Model) renderFooter() string {
	status := dimStyle.Render("enter send · /help commands · ctrl+c quit")
	if m.loading {
		status = m.spinner.View() + " " + dimStyle.Render("waiting for the assistant…")
	}
	input := promptStyle.Render(promptIcon+" ") + m.textInput.View()
	return footerStyle.Width(max(m.width, 1)).Render(status) + "\n" + input
}

func (m Model) renderToasts() string {
	var lines []string
	for _, t := range m.toasts {
		lines = append(lines, renderToast(t))
	}
	return strings.Join(lines, "\n")
}

func renderToast(t toast) string {
	look := lookFor(t.level)
	return toastStyle.BorderForeground(look.color).Render(look.badge() + " " + t.text)
}

// renderContent renders all blocks plus any reply text still streaming in
func (m Model) renderContent() string {
	var b strings.Builder
	for _, block := range m.blocks {
		b.WriteString(m.renderBlock(block))
		b.WriteString("\n\n")
	}
	if m.streaming != "" {
		b.WriteString(assistantStyle.Render(m.streaming))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderBlock(block ContentBlock) string {
	switch block.Type {
	case BlockUser:
		return promptStyle.Render(promptIcon+" ") + userStyle.Render(block.Content)
	case BlockAssistant:
		return m.renderMarkdown(block.Content)
	case BlockError:
		return lookFor(agent.NotifyError).badge() + " " + block.Content
	case BlockRaw:
		payload, ok := agent.FindPayload(block.Content)
		if !ok {
			return dimStyle.Render(block.Content)
		}
		before, after, _ := strings.Cut(block.Content, payload)
		return dimStyle.Render(before) + m.highlighter.HighlightJSON(payload) + dimStyle.Render(after)
	default:
		return infoStyle.Render(block.Content)
	}
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return assistantStyle.Render(text)
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return assistantStyle.Render(text)
	}
	return strings.Trim(out, "\n")
}
