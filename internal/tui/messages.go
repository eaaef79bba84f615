package tui

import (
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/session"
)

// replyMsg carries the result of a finished turn
type replyMsg struct {
	input string
	reply agent.Reply
	err   error
}

// streamChunkMsg is a piece of streamed reply text
type streamChunkMsg struct {
	sessionID string
	text      string
}

// toastMsg shows a transient notification
type toastMsg struct {
	level agent.NotifyLevel
	text  string
}

// transcriptMsg replaces the visible transcript after a session switch
type transcriptMsg struct {
	sessionID string
	name      string
	messages  []session.Message
	err       error
}

// sessionsMsg lists sessions for /sessions
type sessionsMsg struct {
	sessions []session.Info
	err      error
}

// expireToastsMsg drops toasts older than their lifetime
type expireToastsMsg struct {
	now time.Time
}
