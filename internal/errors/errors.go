package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryLLM       Category = "llm"
	CategoryTool      Category = "tool"
	CategoryRetrieval Category = "retrieval"
	CategoryBackend   Category = "backend"
	CategorySession   Category = "session"
	CategoryConfig    Category = "config"
	CategoryInput     Category = "input"
)

// DashError is the structured error type for the project
type DashError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *DashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *DashError) Unwrap() error {
	return e.Cause
}

func (e *DashError) Is(target error) bool {
	t, ok := target.(*DashError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or non-DashError types.
func IsRetryable(err error) bool {
	var de *DashError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}

// GetCategory extracts the error category from a DashError.
// Returns an empty Category for nil errors or non-DashError types.
func GetCategory(err error) Category {
	var de *DashError
	if errors.As(err, &de) {
		return de.Category
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
// For DashError it returns the Message field, followed by the cause when one
// is present; for other errors it returns Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DashError
	if errors.As(err, &de) {
		if de.Cause != nil {
			return de.Message + ": " + de.Cause.Error()
		}
		return de.Message
	}
	return err.Error()
}

// HasCode reports whether err (or anything it wraps) is a DashError with code.
func HasCode(err error, code string) bool {
	var de *DashError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
