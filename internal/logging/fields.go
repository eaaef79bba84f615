package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field is one key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F creates an ad-hoc field. Prefer the named constructors below so keys
// stay consistent across packages.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Conversation

func SessionID(id string) Field { return F("session_id", id) }
func Model(name string) Field { return F("model", name) }
func Page(path string) Field { return F("page", path) }
func MessageCount(n int) Field { return F("msg_count", n) }
func Success(ok bool) Field { return F("success", ok) }

// Query records a search or user query, cut to 200 bytes.
func Query(q string) Field {
	if len(q) > 200 {
		q = q[:197] + "..."
	}
	return F("query", q)
}

// Dashboard data

func ToolName(name string) Field { return F("tool", name) }
func ProjectID(id string) Field { return F("project_id", id) }
func Collection(name string) Field { return F("collection", name) }
func Count(n int) Field { return F("count", n) }
func Method(m string) Field { return F("method", m) }
func Status(code int) Field { return F("status", code) }
func Path(p string) Field { return F("path", p) }
func InputTokens(n int) Field { return F("input_tokens", n) }
func OutputTokens(n int) Field { return F("output_tokens", n) }
func Reason(r string) Field { return F("reason", r) }
func Attempt(n int) Field { return F("attempt", n) }
func From(state string) Field { return F("from", state) }
func To(state string) Field { return F("to", state) }
func Duration(d time.Duration) Field { return F("duration_ms", d.Milliseconds()) }
func DurationSince(t time.Time) Field { return Duration(time.Since(t)) }

// Error records err's message, or null for a nil error.
func Error(err error) Field {
	if err == nil {
		return F("error", nil)
	}
	return F("error", err.Error())
}

func toZap(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		zf[i] = zap.Any(f.Key, f.Value)
	}
	return zf
}
