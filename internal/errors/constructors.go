package errors

import "fmt"

// Error codes referenced outside this package.
const (
	CodeEmptyInput    = "empty_input"
	CodeTurnInFlight  = "turn_in_flight"
	CodeMissingAPIKey = "llm_missing_api_key"
	CodeRateLimited   = "llm_rate_limited"
	CodeNotFound      = "backend_not_found"
	CodeProtected     = "session_protected"
)

// LLMUnavailable creates an error for when the completion endpoint is unreachable.
func LLMUnavailable(cause error) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      "llm_unavailable",
		Message:   "completion service is unavailable",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMMissingAPIKey creates an error for when no API key is configured for a provider.
func LLMMissingAPIKey(provider, envVar string) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      CodeMissingAPIKey,
		Message:   fmt.Sprintf("no API key configured for %s - set %s", provider, envVar),
		Retryable: false,
	}
}

// LLMRequestFailed creates an error for when a completion request fails.
func LLMRequestFailed(cause error) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      "llm_request_failed",
		Message:   "completion request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMRejected creates an error for a non-retryable endpoint rejection (4xx other than 429).
func LLMRejected(status int, cause error) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      "llm_rejected",
		Message:   fmt.Sprintf("completion endpoint rejected the request (status %d)", status),
		Retryable: false,
		Cause:     cause,
	}
}

// LLMRateLimited creates an error for a 429 from the completion endpoint.
func LLMRateLimited(cause error) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      CodeRateLimited,
		Message:   "completion endpoint rate limit reached",
		Retryable: true,
		Cause:     cause,
	}
}

// LLMEmptyResponse creates an error for a response without any choice.
func LLMEmptyResponse(model string) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      "llm_empty_response",
		Message:   fmt.Sprintf("model %q returned no choices", model),
		Retryable: false,
	}
}

// LLMUnknownModel creates an error for a model id missing from the catalog.
func LLMUnknownModel(model string) *DashError {
	return &DashError{
		Category:  CategoryLLM,
		Code:      "llm_unknown_model",
		Message:   fmt.Sprintf("model %q is not in the catalog", model),
		Retryable: false,
	}
}

// ToolInvalidArguments creates an error for a recognized tool whose arguments are malformed.
func ToolInvalidArguments(name string, cause error) *DashError {
	return &DashError{
		Category:  CategoryTool,
		Code:      "tool_invalid_arguments",
		Message:   fmt.Sprintf("invalid arguments for %s", name),
		Retryable: false,
		Cause:     cause,
	}
}

// ToolExecutionFailed creates an error for when a tool execution fails.
// Retryability depends on the underlying cause.
func ToolExecutionFailed(name string, cause error) *DashError {
	return &DashError{
		Category:  CategoryTool,
		Code:      "tool_execution_failed",
		Message:   fmt.Sprintf("%s failed", name),
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// RetrievalFailed creates an error for a failed semantic search.
func RetrievalFailed(cause error) *DashError {
	return &DashError{
		Category:  CategoryRetrieval,
		Code:      "retrieval_failed",
		Message:   "semantic search failed",
		Retryable: true,
		Cause:     cause,
	}
}

// BackendRequestFailed creates an error for a failed backend call.
func BackendRequestFailed(op string, status int, cause error) *DashError {
	return &DashError{
		Category:  CategoryBackend,
		Code:      "backend_request_failed",
		Message:   fmt.Sprintf("%s failed (status %d)", op, status),
		Retryable: status == 0 || status >= 500,
		Cause:     cause,
	}
}

// BackendNotFound creates an error for a row that does not exist.
func BackendNotFound(table, id string) *DashError {
	return &DashError{
		Category:  CategoryBackend,
		Code:      CodeNotFound,
		Message:   fmt.Sprintf("%s %q not found", table, id),
		Retryable: false,
	}
}

// SessionNotFound creates an error for an unknown chat session.
func SessionNotFound(id string) *DashError {
	return &DashError{
		Category:  CategorySession,
		Code:      "session_not_found",
		Message:   fmt.Sprintf("session %q not found", id),
		Retryable: false,
	}
}

// SessionProtected creates an error for an attempt to delete the default session.
func SessionProtected(id string) *DashError {
	return &DashError{
		Category:  CategorySession,
		Code:      CodeProtected,
		Message:   fmt.Sprintf("session %q is protected and cannot be deleted", id),
		Retryable: false,
	}
}

// ConfigLoadFailed creates an error for when configuration loading fails.
func ConfigLoadFailed(path string, cause error) *DashError {
	return &DashError{
		Category:  CategoryConfig,
		Code:      "config_load_failed",
		Message:   fmt.Sprintf("failed to load config from %q", path),
		Retryable: false,
		Cause:     cause,
	}
}

// EmptyInput creates an error for a blank chat submission.
func EmptyInput() *DashError {
	return &DashError{
		Category:  CategoryInput,
		Code:      CodeEmptyInput,
		Message:   "message is empty",
		Retryable: false,
	}
}

// TurnInFlight creates an error for a submission while the session is still waiting for a reply.
func TurnInFlight(sessionID string) *DashError {
	return &DashError{
		Category:  CategoryInput,
		Code:      CodeTurnInFlight,
		Message:   fmt.Sprintf("session %q is still waiting for a reply", sessionID),
		Retryable: true,
	}
}
