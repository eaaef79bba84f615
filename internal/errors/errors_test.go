package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDashError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DashError
		contains []string
	}{
		{
			name: "with cause",
			err: &DashError{
				Category: CategoryLLM,
				Code:     "llm_unavailable",
				Message:  "completion service is unavailable",
				Cause:    fmt.Errorf("connection refused"),
			},
			contains: []string{"[llm]", "llm_unavailable", "completion service is unavailable", "connection refused"},
		},
		{
			name: "without cause",
			err: &DashError{
				Category: CategoryTool,
				Code:     "tool_invalid_arguments",
				Message:  "invalid arguments for updateProject",
			},
			contains: []string{"[tool]", "tool_invalid_arguments", "updateProject"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("Error() = %q, want it to contain %q", msg, s)
				}
			}
		})
	}
}

func TestDashError_UnwrapChain(t *testing.T) {
	root := fmt.Errorf("disk full")
	mid := ConfigLoadFailed("dashai.yaml", root)
	outer := fmt.Errorf("startup failed: %w", mid)

	if !errors.Is(outer, root) {
		t.Error("expected errors.Is to find root cause through chain")
	}

	var de *DashError
	if !errors.As(outer, &de) {
		t.Fatal("expected errors.As to find DashError in chain")
	}
	if de.Code != "config_load_failed" {
		t.Errorf("got code %q, want %q", de.Code, "config_load_failed")
	}
}

func TestDashError_Is(t *testing.T) {
	err1 := &DashError{Category: CategoryLLM, Code: "llm_unavailable", Message: "a"}
	err2 := &DashError{Category: CategoryLLM, Code: "llm_unavailable", Message: "b"}
	err3 := &DashError{Category: CategoryLLM, Code: "llm_request_failed", Message: "c"}
	err4 := &DashError{Category: CategoryTool, Code: "llm_unavailable", Message: "d"}

	if !errors.Is(err1, err2) {
		t.Error("expected Is() to match same category+code regardless of message")
	}
	if errors.Is(err1, err3) {
		t.Error("expected Is() to not match different codes")
	}
	if errors.Is(err1, err4) {
		t.Error("expected Is() to not match different categories")
	}
	if errors.Is(err1, fmt.Errorf("not a dash error")) {
		t.Error("expected Is() to return false for non-DashError target")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable", LLMUnavailable(nil), true},
		{"non-retryable", LLMMissingAPIKey("openrouter", "OPENROUTER_API_KEY"), false},
		{"wrapped retryable", fmt.Errorf("outer: %w", LLMRateLimited(nil)), true},
		{"backend 5xx", BackendRequestFailed("create project", 503, nil), true},
		{"backend 4xx", BackendRequestFailed("create project", 400, nil), false},
		{"plain", fmt.Errorf("plain error"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"llm", LLMUnavailable(nil), CategoryLLM},
		{"tool", ToolInvalidArguments("createTask", nil), CategoryTool},
		{"retrieval", RetrievalFailed(nil), CategoryRetrieval},
		{"session", SessionProtected("default"), CategorySession},
		{"input", EmptyInput(), CategoryInput},
		{"wrapped", fmt.Errorf("wrap: %w", ConfigLoadFailed("config.yaml", nil)), CategoryConfig},
		{"plain", fmt.Errorf("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCategory(tt.err); got != tt.want {
				t.Errorf("GetCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "message only",
			err:  SessionNotFound("abc"),
			want: `session "abc" not found`,
		},
		{
			name: "message with cause",
			err:  ToolExecutionFailed("createProject", fmt.Errorf("duplicate name")),
			want: "createProject failed: duplicate name",
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("wrap: %w", EmptyInput()),
			want: "message is empty",
		},
		{"plain", fmt.Errorf("something broke"), "something broke"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserMessage(tt.err); got != tt.want {
				t.Errorf("GetUserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("send: %w", TurnInFlight("s1"))
	if !HasCode(err, CodeTurnInFlight) {
		t.Error("expected HasCode to see through wrapping")
	}
	if HasCode(err, CodeEmptyInput) {
		t.Error("expected HasCode to reject a different code")
	}
	if HasCode(nil, CodeEmptyInput) {
		t.Error("expected HasCode(nil) to be false")
	}
}

func TestConstructors(t *testing.T) {
	t.Run("ToolExecutionFailed_inherits_retryable", func(t *testing.T) {
		cause := LLMUnavailable(nil)
		err := ToolExecutionFailed("createTask", cause)
		assertError(t, err, CategoryTool, "tool_execution_failed", true, cause)
	})

	t.Run("ToolExecutionFailed_non_retryable", func(t *testing.T) {
		cause := fmt.Errorf("constraint violation")
		err := ToolExecutionFailed("createTask", cause)
		assertError(t, err, CategoryTool, "tool_execution_failed", false, cause)
	})

	t.Run("LLMMissingAPIKey", func(t *testing.T) {
		err := LLMMissingAPIKey("openrouter", "OPENROUTER_API_KEY")
		assertError(t, err, CategoryLLM, CodeMissingAPIKey, false, nil)
		if !strings.Contains(err.Message, "OPENROUTER_API_KEY") {
			t.Errorf("Message should name the env var, got %q", err.Message)
		}
	})

	t.Run("BackendNotFound", func(t *testing.T) {
		err := BackendNotFound("projects", "p-1")
		assertError(t, err, CategoryBackend, CodeNotFound, false, nil)
	})

	t.Run("TurnInFlight", func(t *testing.T) {
		err := TurnInFlight("s-1")
		assertError(t, err, CategoryInput, CodeTurnInFlight, true, nil)
	})
}

func assertError(t *testing.T, err *DashError, category Category, code string, retryable bool, cause error) {
	t.Helper()
	if err.Category != category {
		t.Errorf("Category = %q, want %q", err.Category, category)
	}
	if err.Code != code {
		t.Errorf("Code = %q, want %q", err.Code, code)
	}
	if err.Retryable != retryable {
		t.Errorf("Retryable = %v, want %v", err.Retryable, retryable)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Message == "" {
		t.Error("Message should not be empty")
	}
}
