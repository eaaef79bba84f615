package tui

import (
	"testing"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotoCommand(t *testing.T) {
	m, chat, _ := newTestModel()

	m, _ = typeAndEnter(t, m, "/goto projects/p1")
	assert.Equal(t, "/projects/p1", chat.location)

	m, _ = typeAndEnter(t, m, "/goto")
	require.NotEmpty(t, m.Blocks())
	assert.Equal(t, "Current page: /projects/p1", m.Blocks()[len(m.Blocks())-1].Content)
}

func TestModelCommand(t *testing.T) {
	m, chat, _ := newTestModel()

	m, _ = typeAndEnter(t, m, "/model")
	require.Len(t, m.Blocks(), 1)
	assert.Contains(t, m.Blocks()[0].Content, "* openai/gpt-4o-mini")

	m, _ = typeAndEnter(t, m, "/model nope/nope")
	assert.Equal(t, "openai/gpt-4o-mini", chat.model)
	assert.Equal(t, agent.NotifyError, m.toasts[len(m.toasts)-1].level)

	m, _ = typeAndEnter(t, m, "/model openai/gpt-4o")
	assert.Equal(t, "openai/gpt-4o", chat.model)
	assert.Equal(t, agent.NotifySuccess, m.toasts[len(m.toasts)-1].level)
}

func TestRawCommand(t *testing.T) {
	m, _, _ := newTestModel()

	m, _ = typeAndEnter(t, m, "/raw")
	assert.Empty(t, m.Blocks())

	m.lastRaw = `Sure: {"tool_name":"createTask","arguments":{"title":"x"}}`
	m, _ = typeAndEnter(t, m, "/raw")
	require.Len(t, m.Blocks(), 1)
	assert.Equal(t, BlockRaw, m.Blocks()[0].Type)
	assert.Contains(t, m.renderContent(), "tool_name")
}

func TestSessionCommands(t *testing.T) {
	m, chat, sessions := newTestModel()

	_, cmd := typeAndEnter(t, m, "/sessions")
	require.NotNil(t, cmd)
	msg := cmd()
	list, ok := msg.(sessionsMsg)
	require.True(t, ok)
	updated, _ := m.Update(list)
	m = updated.(Model)
	content := m.Blocks()[len(m.Blocks())-1].Content
	assert.Contains(t, content, "* 1. General")
	assert.Contains(t, content, "2. Q3 planning")
	assert.Contains(t, content, "what is left?")

	_, cmd = typeAndEnter(t, m, "/switch 2")
	require.NotNil(t, cmd)
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, "abc123", chat.Active())
	assert.Equal(t, "Q3 planning", m.sessionName)

	m, _ = typeAndEnter(t, m, "/rename Budget")
	assert.Equal(t, "Budget", sessions.renamed["abc123"])
	assert.Equal(t, "Budget", m.sessionName)

	_, cmd = typeAndEnter(t, m, "/delete")
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, []string{"abc123"}, sessions.deleted)
	assert.Equal(t, "s1", chat.Active(), "falls back to the default conversation")

	_, cmd = typeAndEnter(t, m, "/delete")
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, agent.NotifyError, m.toasts[len(m.toasts)-1].level, "default conversation is protected")
}

func TestNewSessionCommand(t *testing.T) {
	m, chat, _ := newTestModel()
	_, cmd := typeAndEnter(t, m, "/new Client call")
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, "s-new", chat.Active())
	assert.Equal(t, "Client call", m.sessionName)
}

func TestResolveSession(t *testing.T) {
	list := []session.Info{
		{Session: session.Session{ID: "aaa111"}},
		{Session: session.Session{ID: "bbb222"}},
	}
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"1", "aaa111", true},
		{"2", "bbb222", true},
		{"3", "", false},
		{"0", "", false},
		{"bbb", "bbb222", true},
		{"zzz", "", false},
	}
	for _, tt := range tests {
		got, ok := resolveSession(list, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
	}
}

func TestUnknownAndQuitCommands(t *testing.T) {
	m, _, _ := newTestModel()
	m, _ = typeAndEnter(t, m, "/frobnicate")
	assert.Equal(t, agent.NotifyWarning, m.toasts[len(m.toasts)-1].level)

	m, cmd := typeAndEnter(t, m, "/quit")
	assert.True(t, m.IsQuitting())
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
