// Package ui renders the plain command-line output: replies, notifications
// and rate-limit waits.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/dashai/internal/agent"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/abdul-hamid-achik/dashai/internal/ui/highlight"
	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// OutputHandler writes styled output. Replies go to out, notifications and
// errors to errOut.
type OutputHandler struct {
	out         io.Writer
	errOut      io.Writer
	useColors   bool
	highlighter *highlight.Highlighter
}

// NewOutputHandler creates an output handler for stdout and stderr
func NewOutputHandler() *OutputHandler {
	// Check if output is a terminal
	useColors := true
	if fileInfo, err := os.Stdout.Stat(); err != nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		useColors = false
	}
	if os.Getenv("NO_COLOR") != "" {
		useColors = false
	}
	return NewOutputHandlerWithWriters(os.Stdout, os.Stderr, useColors)
}

// NewOutputHandlerWithWriters creates an output handler writing to the given writers.
func NewOutputHandlerWithWriters(out, errOut io.Writer, useColors bool) *OutputHandler {
	return &OutputHandler{
		out:         out,
		errOut:      errOut,
		useColors:   useColors,
		highlighter: highlight.New(useColors),
	}
}

func (o *OutputHandler) style(s lipgloss.Style, text string) string {
	if !o.useColors {
		return text
	}
	return s.Render(text)
}

// IsTTY returns true if the output is a terminal (not piped/redirected)
func (o *OutputHandler) IsTTY() bool {
	return o.useColors
}

// Notify prints a transient notification to stderr.
func (o *OutputHandler) Notify(level agent.NotifyLevel, message string) {
	switch level {
	case agent.NotifyError:
		fmt.Fprintln(o.errOut, o.style(errorStyle, "✗ ")+message)
	case agent.NotifyWarning:
		fmt.Fprintln(o.errOut, o.style(warningStyle, "! ")+message)
	case agent.NotifySuccess:
		fmt.Fprintln(o.errOut, o.style(successStyle, "✓ ")+message)
	default:
		fmt.Fprintln(o.errOut, o.style(infoStyle, "ℹ ")+message)
	}
}

// Reply prints an assistant message.
func (o *OutputHandler) Reply(text string) {
	fmt.Fprintln(o.out, o.highlighter.HighlightMarkdownCodeBlocks(text))
}

// RawReply prints the unprocessed model output with its tool-call payload
// highlighted.
func (o *OutputHandler) RawReply(text, payload string) {
	if payload == "" {
		fmt.Fprintln(o.out, text)
		return
	}
	before, after, _ := strings.Cut(text, payload)
	fmt.Fprintln(o.out, before+o.highlighter.HighlightJSON(payload)+after)
}

// StreamText outputs streaming text without newline
func (o *OutputHandler) StreamText(text string) {
	fmt.Fprint(o.out, text)
}

// StreamDone signals end of streaming
func (o *OutputHandler) StreamDone() {
	fmt.Fprintln(o.out)
}

// Error outputs an error message
func (o *OutputHandler) Error(err error) {
	fmt.Fprintln(o.errOut, o.style(errorStyle, "Error: ")+err.Error())
}

// Warning outputs a warning message
func (o *OutputHandler) Warning(msg string) {
	fmt.Fprintln(o.errOut, o.style(warningStyle, "Warning: ")+msg)
}

// Success outputs a success message
func (o *OutputHandler) Success(msg string) {
	fmt.Fprintln(o.out, o.style(successStyle, "✓ ")+msg)
}

// Info outputs an info message
func (o *OutputHandler) Info(msg string) {
	fmt.Fprintln(o.out, o.style(infoStyle, "ℹ ")+msg)
}

// Header outputs a header
func (o *OutputHandler) Header(text string) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, o.style(headerStyle, text))
	fmt.Fprintln(o.out)
}

// ModelInfo outputs the current model
func (o *OutputHandler) ModelInfo(model string) {
	fmt.Fprintln(o.errOut, o.style(dimStyle, "Using model: ")+o.style(accentStyle, llm.DisplayName(model)))
}

// Models prints the catalog grouped by tier, marking the current model.
func (o *OutputHandler) Models(models []llm.ModelInfo, current string) {
	var tier llm.Tier
	for _, m := range models {
		if m.Tier != tier {
			tier = m.Tier
			fmt.Fprintln(o.out, o.style(headerStyle, string(tier)))
		}
		marker := "  "
		if m.ID == current {
			marker = o.style(successStyle, "* ")
		}
		fmt.Fprintf(o.out, "%s%-36s %s\n", marker, m.ID, o.style(dimStyle, m.Name+" - "+m.Description))
	}
}
