package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// InputHandler handles user input
type InputHandler struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInputHandlerWithReader creates an input handler over r, printing prompts to out.
func NewInputHandlerWithReader(r io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{reader: bufio.NewReader(r), out: out}
}

// ReadLine reads a single line of input
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	fmt.Fprint(h.out, prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but y/yes counts as no.
func (h *InputHandler) Confirm(question string) bool {
	answer, err := h.ReadLine(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
