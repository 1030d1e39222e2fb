package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Schedule errors (SCHEDULE-001 to SCHEDULE-099)
	ErrCodeScheduleEmpty       ErrorCode = "SCHEDULE-001"
	ErrCodeScheduleInvalid     ErrorCode = "SCHEDULE-002"
	ErrCodeScheduleUnmarshal   ErrorCode = "SCHEDULE-003"
	ErrCodeScheduleMutatedPast ErrorCode = "SCHEDULE-004"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanEmpty       ErrorCode = "PLAN-001"
	ErrCodePlanNoTasks     ErrorCode = "PLAN-002"
	ErrCodePlanRequestBusy ErrorCode = "PLAN-003"

	// Clarification errors (CLARIFY-001 to CLARIFY-099)
	ErrCodeClarifyNotAwaiting ErrorCode = "CLARIFY-001"
	ErrCodeClarifyAnswerEmpty ErrorCode = "CLARIFY-002"
	ErrCodeClarifyNoQuestions ErrorCode = "CLARIFY-003"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionNoSchedule    ErrorCode = "SESSION-001"
	ErrCodeSessionBadTransition ErrorCode = "SESSION-002"
	ErrCodeSessionStoreCorrupt  ErrorCode = "SESSION-003"
	ErrCodeSessionStoreVersion  ErrorCode = "SESSION-004"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderNotFound    ErrorCode = "PROVIDER-001"
	ErrCodeProviderConfig      ErrorCode = "PROVIDER-002"
	ErrCodeProviderAuth        ErrorCode = "PROVIDER-003"
	ErrCodeProviderAPI         ErrorCode = "PROVIDER-004"
	ErrCodeProviderRateLimit   ErrorCode = "PROVIDER-005"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER-006"
	ErrCodeProviderBadResponse ErrorCode = "PROVIDER-007"

	// History errors (HISTORY-001 to HISTORY-099)
	ErrCodeHistoryOpen  ErrorCode = "HISTORY-001"
	ErrCodeHistoryQuery ErrorCode = "HISTORY-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-004"
	ErrCodeFileMarshal     ErrorCode = "IO-005"
)

// DayflowError represents an enhanced error with code, suggestions, and documentation
type DayflowError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *DayflowError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *DayflowError) Unwrap() error {
	return e.Cause
}

// New creates a new DayflowError
func New(code ErrorCode, message string) *DayflowError {
	return &DayflowError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new DayflowError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DayflowError {
	return &DayflowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DayflowError) WithSuggestion(suggestion string) *DayflowError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DayflowError) WithSuggestions(suggestions ...string) *DayflowError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *DayflowError) WithDocs(url string) *DayflowError {
	e.DocsURL = url
	return e
}

// WithCause attaches an underlying error
func (e *DayflowError) WithCause(cause error) *DayflowError {
	e.Cause = cause
	return e
}

// Common error constructors for frequently used errors

// NewPlanEmptyError creates an empty plan input error
func NewPlanEmptyError() *DayflowError {
	return New(ErrCodePlanEmpty, "plan is empty").
		WithSuggestion("Describe your day in a sentence or two, e.g. \"Dentist at 2pm, workout 30 min\"")
}

// NewPlanNoTasksError creates an error for a plan the model could not
// turn into at least one event. Distinct from a provider failure.
func NewPlanNoTasksError() *DayflowError {
	return New(ErrCodePlanNoTasks, "could not build a schedule from your plan").
		WithSuggestion("Try being more specific about what you want to do and when")
}

// NewProviderAuthError creates a provider authentication error
func NewProviderAuthError(provider string) *DayflowError {
	return New(ErrCodeProviderAuth, fmt.Sprintf("authentication failed for provider: %s", provider)).
		WithSuggestion(fmt.Sprintf("Set the %s_API_KEY environment variable", strings.ToUpper(provider))).
		WithSuggestion("Check if your API key is valid and not expired").
		WithSuggestion("Run 'dayflow provider health' to verify connectivity")
}

// NewProviderBadResponseError creates an error for a response the planner
// could not parse as a schedule
func NewProviderBadResponseError(provider string, cause error) *DayflowError {
	return Wrap(ErrCodeProviderBadResponse, fmt.Sprintf("malformed response from provider: %s", provider), cause).
		WithSuggestion("Retry the request").
		WithSuggestion("Try a different model with 'dayflow serve --model'")
}

// NewProviderRateLimitError creates a rate limit error
func NewProviderRateLimitError(provider string, retryAfter string) *DayflowError {
	msg := fmt.Sprintf("rate limit exceeded for provider: %s", provider)
	if retryAfter != "" {
		msg += fmt.Sprintf(" (retry after: %s)", retryAfter)
	}

	return New(ErrCodeProviderRateLimit, msg).
		WithSuggestion("Wait before retrying the request").
		WithSuggestion("Use a different provider if available")
}

// NewSessionStoreCorruptError creates an error for a persisted session whose
// checksum does not match its payload
func NewSessionStoreCorruptError(path string) *DayflowError {
	return New(ErrCodeSessionStoreCorrupt, fmt.Sprintf("session state file is corrupt: %s", path)).
		WithSuggestion("Delete the file to start with a fresh session").
		WithSuggestion("Progress counters will reset; schedules can be regenerated")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *DayflowError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *DayflowError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
