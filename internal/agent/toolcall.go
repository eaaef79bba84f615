package agent

import (
	"encoding/json"
	"errors"

	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/tools"
	"github.com/tidwall/gjson"
)

// Invocation is one entry of a tool-call payload. It is one of
// ToolInvocation, UnknownInvocation or MalformedInvocation.
type Invocation interface {
	invocation()
	Name() string
}

// ToolInvocation is a call to a registered tool with valid arguments.
type ToolInvocation struct {
	Call tools.Call
}

// UnknownInvocation names a tool that is not registered. It is skipped.
type UnknownInvocation struct {
	ToolName string
}

// MalformedInvocation names a registered tool but carries arguments that
// do not satisfy it.
type MalformedInvocation struct {
	ToolName string
	Err      error
}

func (ToolInvocation) invocation()      {}
func (UnknownInvocation) invocation()   {}
func (MalformedInvocation) invocation() {}

func (i ToolInvocation) Name() string      { return i.Call.ToolName() }
func (i UnknownInvocation) Name() string   { return i.ToolName }
func (i MalformedInvocation) Name() string { return i.ToolName }

// ParseToolCalls extracts the tool-call payload embedded in reply. The
// payload is the first JSON value whose value (or first element) carries a
// string tool_name; other JSON in the prose, such as a citation "[1]", is
// passed over. A nil result means the reply is ordinary text.
func ParseToolCalls(reply string, registry *tools.Registry) []Invocation {
	_, entries := findPayload(reply)
	if entries == nil {
		return nil
	}

	invocations := make([]Invocation, 0, len(entries))
	for _, entry := range entries {
		invocations = append(invocations, decodeInvocation(entry, registry))
	}
	return invocations
}

// FindPayload returns the span of s that ParseToolCalls would dispatch,
// falling back to the first JSON value when s holds no tool call.
func FindPayload(s string) (string, bool) {
	if payload, entries := findPayload(s); entries != nil {
		return payload, true
	}
	return FindJSON(s)
}

func findPayload(s string) (string, []gjson.Result) {
	var (
		payload string
		entries []gjson.Result
	)
	scanJSON(s, func(candidate string) bool {
		payload, entries = candidate, payloadEntries(gjson.Parse(candidate))
		return entries != nil
	})
	return payload, entries
}

// payloadEntries normalises a tool-call payload to its entries, or returns
// nil when v is not one.
func payloadEntries(v gjson.Result) []gjson.Result {
	entries := []gjson.Result{v}
	if v.IsArray() {
		entries = v.Array()
	}
	if len(entries) == 0 || toolName(entries[0]) == "" {
		return nil
	}
	return entries
}

func toolName(v gjson.Result) string {
	if !v.IsObject() {
		return ""
	}
	name := v.Get("tool_name")
	if name.Type != gjson.String {
		return ""
	}
	return name.Str
}

func decodeInvocation(entry gjson.Result, registry *tools.Registry) Invocation {
	name := toolName(entry)
	tool, ok := registry.Get(name)
	if !ok {
		return UnknownInvocation{ToolName: name}
	}
	call, err := tool.Decode(json.RawMessage(entry.Get("arguments").Raw))
	if err != nil {
		return MalformedInvocation{ToolName: name, Err: dasherr.ToolInvalidArguments(name, err)}
	}
	return ToolInvocation{Call: call}
}

var errUnbalanced = errors.New("unbalanced")

// FindJSON returns the first complete JSON object or array embedded in s.
// Every '{' or '[' is tried as a start in order; the span up to its matching
// bracket is accepted if it is valid JSON. Brackets inside string literals
// are ignored.
func FindJSON(s string) (string, bool) {
	var found string
	ok := scanJSON(s, func(candidate string) bool {
		found = candidate
		return true
	})
	return found, ok
}

// scanJSON offers each complete JSON span of s to accept, left to right,
// until accept returns true. A valid span that is rejected is skipped as a
// whole, so values nested inside it are never offered.
func scanJSON(s string, accept func(candidate string) bool) bool {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		end, err := matchBracket(s, start)
		if err != nil {
			continue
		}
		candidate := s[start : end+1]
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if accept(candidate) {
			return true
		}
		start = end
	}
	return false
}

// matchBracket returns the index of the bracket closing the one at start.
func matchBracket(s string, start int) (int, error) {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, errUnbalanced
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, nil
			}
		}
	}
	return 0, errUnbalanced
}
