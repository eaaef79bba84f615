package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/llm"
)

// ANSI cursor control codes
const (
	cursorStart = "\r"      // Move cursor to start of line
	clearLine   = "\033[2K" // Clear entire line
)

// Braille spinner animation frames
var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner shows rate-limit waits on stderr
type Spinner struct {
	output *OutputHandler
}

// NewSpinner creates a new spinner attached to an output handler
func NewSpinner(output *OutputHandler) *Spinner {
	return &Spinner{output: output}
}

// Wait blocks for info.Duration or until ctx is cancelled, showing a
// countdown meanwhile. It satisfies llm.WaitCallback.
func (s *Spinner) Wait(ctx context.Context, info llm.WaitInfo) error {
	// Skip spinner for very short waits to avoid flicker
	if info.Duration < 500*time.Millisecond {
		return sleepCtx(ctx, info.Duration)
	}
	if !s.output.IsTTY() {
		fmt.Fprintln(s.output.errOut, s.statusLine("ℹ", info, info.Duration))
		return sleepCtx(ctx, info.Duration)
	}
	return s.animatedWait(ctx, info)
}

// animatedWait displays an animated spinner with countdown (for TTY mode)
func (s *Spinner) animatedWait(ctx context.Context, info llm.WaitInfo) error {
	start := time.Now()
	frame := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	defer fmt.Fprint(s.output.errOut, clearLine+cursorStart)

	for {
		remaining := max(info.Duration-time.Since(start), 0)
		line := s.statusLine(string(spinnerFrames[frame]), info, remaining)
		fmt.Fprint(s.output.errOut, clearLine+cursorStart+line)

		if remaining == 0 {
			return nil
		}
		select {
		case <-ticker.C:
			frame = (frame + 1) % len(spinnerFrames)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// statusLine formats: ⠹ Rate limited | Retry 2/5 | endpoint returned 429 | 45s remaining
func (s *Spinner) statusLine(icon string, info llm.WaitInfo, remaining time.Duration) string {
	line := s.output.style(accentStyle, icon) + " " + s.output.style(warningStyle, "Rate limited")
	if info.MaxAttempts > 0 {
		line += fmt.Sprintf(" | Retry %d/%d", info.Attempt, info.MaxAttempts)
	}
	if info.Reason != "" {
		line += " | " + info.Reason
	}
	return line + " | " + formatDuration(remaining) + " remaining"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// formatDuration formats a duration for display (45s, 1m30s, 5m00s)
func formatDuration(d time.Duration) string {
	d = max(d.Round(time.Second), 0)

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", minutes, seconds)
}
