package helpers

// ContextKey is a custom type for context keys to avoid string collisions
type ContextKey string

const (
	// ConfigKey is the context key for storing configuration
	ConfigKey ContextKey = "config"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	OutputFormatAuto OutputFormat = "auto"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatTUI  OutputFormat = "tui"
)

// Error codes carried by CliError
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeAPI        = "API_ERROR"
	CodeCanceled   = "OPERATION_CANCELED"
	CodeTimeout    = "OPERATION_TIMEOUT"
	CodeMissingArg = "MISSING_FLAG"
	CodeInternal   = "INTERNAL_ERROR"
)
