// Package highlight colours code and JSON payloads for the terminal.
package highlight

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	formatterName = "terminal256"
	styleName     = "monokai"
)

// fencedBlock matches a markdown code fence and captures its language tag
// and body.
var fencedBlock = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// Highlighter renders source text with ANSI colours. A disabled highlighter
// passes text through unchanged, which is what piped output wants.
type Highlighter struct {
	enabled   bool
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a Highlighter.
func New(enabled bool) *Highlighter {
	return &Highlighter{
		enabled:   enabled,
		formatter: formatters.Get(formatterName),
		style:     styles.Get(styleName),
	}
}

// Highlight colours code using the lexer for language, falling back to
// plain text for unknown languages. On any lexer or formatter error the
// input is returned as-is.
func (h *Highlighter) Highlight(code, language string) string {
	if !h.enabled || code == "" {
		return code
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	tokens, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}

	var out bytes.Buffer
	if err := h.formatter.Format(&out, h.style, tokens); err != nil {
		return code
	}
	return out.String()
}

// HighlightJSON indents a tool-call payload before colouring it. Text that
// is not valid JSON keeps its original layout.
func (h *Highlighter) HighlightJSON(payload string) string {
	var indented bytes.Buffer
	if json.Indent(&indented, []byte(payload), "", "  ") == nil {
		payload = indented.String()
	}
	return h.Highlight(payload, "json")
}

// HighlightMarkdownCodeBlocks replaces each fenced block in text with its
// highlighted body. Text outside the fences is untouched.
func (h *Highlighter) HighlightMarkdownCodeBlocks(text string) string {
	if !h.enabled {
		return text
	}
	return fencedBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := fencedBlock.FindStringSubmatch(block)
		return h.Highlight(strings.TrimSuffix(m[2], "\n"), m[1])
	})
}
