package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/spf13/cobra"
)

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

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause keeps the originating error reachable through errors.Is
func (e *CliError) WithCause(err error) *CliError {
	e.cause = err
	return e
}

// IsTimeoutError checks if an error is a timeout error
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrTimeout) ||
		strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsNetworkError checks if an error is a network-related error
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	return ContainsAny(err.Error(),
		"connection refused", "connection reset", "no route to host",
		"network unreachable", "no such host",
	)
}

// IsAuthError checks if an error is authentication-related
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAuth)
}

// FormatError formats errors based on output mode
func FormatError(err error, mode models.Mode) string {
	if err == nil {
		return ""
	}
	switch mode {
	case models.ModeJSON:
		return formatErrorJSON(err)
	case models.ModeTUI:
		return formatErrorTUI(err)
	default:
		return err.Error()
	}
}

// formatErrorJSON renders {error, details}
func formatErrorJSON(err error) string {
	message, details := extractErrorInfo(err)
	body := map[string]any{"error": message, "details": details}
	var cliErr *CliError
	if errors.As(err, &cliErr) && cliErr.Code != "" {
		body["code"] = cliErr.Code
	}
	data, mErr := json.Marshal(body)
	if mErr != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return string(PrettyJSON(data, false))
}

func formatErrorTUI(err error) string {
	message, details := extractErrorInfo(err)
	result := styles.ErrorStyle.Render("✗ " + message)
	if details != "" {
		result += "\n" + styles.HelpStyle.Italic(true).Render("Details: "+details)
	}
	return result
}

func extractErrorInfo(err error) (message, details string) {
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		return cliErr.Message, cliErr.Details
	}
	return err.Error(), ""
}

// OutputError writes an error to stderr in the appropriate format
func OutputError(err error, mode models.Mode) {
	WriteError(os.Stderr, err, mode)
}

// WriteError writes an error to w in the appropriate format
func WriteError(w io.Writer, err error, mode models.Mode) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode))
}

// ValidateRequired validates that a required string value is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewCliError(CodeMissingArg, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidateEnum validates that a value is in a set of allowed values
func ValidateEnum(value string, allowed []string, fieldName string) error {
	if value == "" {
		return nil
	}
	if slices.Contains(allowed, value) {
		return nil
	}
	return NewCliError(CodeValidation,
		fmt.Sprintf("%s must be one of: %s", fieldName, strings.Join(allowed, ", ")),
		fmt.Sprintf("provided: %s", value))
}

// ContainsAny reports whether s contains any of the provided substrings.
// The comparison is case-insensitive; empty substrings are ignored.
func ContainsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if sub == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// Truncate shortens s to maxLength runes, ending in "…" when cut
func Truncate(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 1 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-1]) + "…"
}

// GetFlagStringWithDefault gets a string flag with a default value
func GetFlagStringWithDefault(cmd *cobra.Command, flagName, defaultValue string) string {
	if value, err := cmd.Flags().GetString(flagName); err == nil && value != "" {
		return value
	}
	return defaultValue
}

// GetFlagBoolWithDefault gets a boolean flag with a default value
func GetFlagBoolWithDefault(cmd *cobra.Command, flagName string, defaultValue bool) bool {
	if value, err := cmd.Flags().GetBool(flagName); err == nil {
		return value
	}
	return defaultValue
}

// GetFlagIntWithDefault gets an integer flag with a default value
func GetFlagIntWithDefault(cmd *cobra.Command, flagName string, defaultValue int) int {
	if value, err := cmd.Flags().GetInt(flagName); err == nil {
		return value
	}
	return defaultValue
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
