package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Error codes reported in JSON error output.
const (
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeTargetDir       = "TARGET_DIR_ERROR"
	CodeBackupFailed    = "BACKUP_FAILED"
	CodeRestoreFailed   = "RESTORE_FAILED"
	CodeFilesFailed     = "FILES_FAILED"
	CodeCanceled        = "CANCELED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrCanceled is reported when a run is interrupted by a signal
var ErrCanceled = errors.New("operation canceled")

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WrapError creates a CLI error whose message is the text of cause.
func WrapError(code string, cause error) *CliError {
	err := NewCliError(code, cause.Error())
	err.cause = cause
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorCode returns the code of the first CliError in err's chain, or
// CodeInternal.
func ErrorCode(err error) string {
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return CodeInternal
}

// ValidateEnum validates that a value is one of the allowed values
func ValidateEnum(value string, allowed []string, fieldName string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return NewCliError(
		CodeInvalidArgument,
		fmt.Sprintf("invalid %s %q", fieldName, value),
		"must be one of: "+strings.Join(allowed, ", "),
	)
}

// FormatError formats errors based on output format
func FormatError(err error, format OutputFormat, color bool) string {
	if err == nil {
		return ""
	}
	switch format {
	case OutputFormatJSON:
		return formatErrorJSON(err)
	default:
		return formatErrorText(err, color)
	}
}

// formatErrorJSON formats errors for JSON output
func formatErrorJSON(err error) string {
	message, details := extractErrorInfo(err)
	errorResponse := map[string]any{
		"error":   message,
		"code":    ErrorCode(err),
		"details": details,
	}
	jsonBytes, err := json.MarshalIndent(errorResponse, "", "  ")
	if err != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return string(jsonBytes)
}

func formatErrorText(err error, color bool) string {
	message, details := extractErrorInfo(err)
	if !color {
		result := "Error: " + message
		if details != "" {
			result += "\nDetails: " + details
		}
		return result
	}
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true)
	result := style.Render("Error: " + message)
	if details != "" {
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
		result += "\n" + detailStyle.Render("Details: "+details)
	}
	return result
}

// extractErrorInfo extracts message and details from error
func extractErrorInfo(err error) (message, details string) {
	var cliErr *CliError
	if errors.As(err, &cliErr) && cliErr != nil {
		return cliErr.Message, cliErr.Details
	}
	return err.Error(), ""
}

// OutputError writes an error to w in the requested format
func OutputError(w io.Writer, err error, format OutputFormat, color bool) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, format, color))
}
