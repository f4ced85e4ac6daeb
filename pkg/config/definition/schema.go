package definition

import (
	"reflect"
	"time"
)

var (
	stringType   = reflect.TypeOf("")
	intType      = reflect.TypeOf(0)
	boolType     = reflect.TypeOf(false)
	durationType = reflect.TypeOf(time.Duration(0))
)

// CreateRegistry creates and populates the configuration registry.
// Defaults, flag names and env vars are declared only here.
func CreateRegistry() *Registry {
	registry := NewRegistry()
	registerAPIFields(registry)
	registerSessionFields(registry)
	registerGridFields(registry)
	registerCLIFields(registry)
	registerRuntimeFields(registry)
	return registry
}

func registerAPIFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "api.base_url",
		Default: "http://localhost:3000",
		CLIFlag: "api-url",
		EnvVar:  "MUNICRUD_API_URL",
		Type:    stringType,
		Help:    "Base URL of the staff backend",
	})
	registry.Register(&FieldDef{
		Path:    "api.timeout",
		Default: 15 * time.Second,
		CLIFlag: "timeout",
		EnvVar:  "MUNICRUD_API_TIMEOUT",
		Type:    durationType,
		Help:    "Per-request timeout",
	})
}

func registerSessionFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:      "session.token",
		Default:   "",
		CLIFlag:   "token",
		EnvVar:    "MUNICRUD_TOKEN",
		Type:      stringType,
		Help:      "Bearer token of the logged-in staff member",
		Sensitive: true,
	})
	registry.Register(&FieldDef{
		Path:    "session.role",
		Default: "",
		CLIFlag: "role",
		EnvVar:  "MUNICRUD_ROLE",
		Type:    stringType,
		Help:    "Viewer role (user, admin, superAdmin); fetched from the backend when empty",
	})
}

func registerGridFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "grid.page_size",
		Default: 10,
		CLIFlag: "page-size",
		EnvVar:  "MUNICRUD_PAGE_SIZE",
		Type:    intType,
		Help:    "Rows per page (10, 20, 30, 40 or 50)",
	})
	registry.Register(&FieldDef{
		Path:    "grid.search_debounce",
		Default: 500 * time.Millisecond,
		EnvVar:  "MUNICRUD_SEARCH_DEBOUNCE",
		Type:    durationType,
		Help:    "Quiet period before a search is sent",
	})
	registry.Register(&FieldDef{
		Path:    "grid.department_cache_size",
		Default: 16,
		EnvVar:  "MUNICRUD_DEPARTMENT_CACHE_SIZE",
		Type:    intType,
		Help:    "Number of sessions whose department list is cached",
	})
}

func registerCLIFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "cli.default_format",
		Default: "auto",
		CLIFlag: "format",
		EnvVar:  "MUNICRUD_FORMAT",
		Type:    stringType,
		Help:    "Output format (auto, json, tui)",
	})
	registry.Register(&FieldDef{
		Path:    "cli.no_color",
		Default: false,
		CLIFlag: "no-color",
		EnvVar:  "MUNICRUD_NO_COLOR",
		Type:    boolType,
		Help:    "Disable colored output",
	})
	registry.Register(&FieldDef{
		Path:    "cli.interactive",
		Default: false,
		CLIFlag: "interactive",
		EnvVar:  "MUNICRUD_INTERACTIVE",
		Type:    boolType,
		Help:    "Force interactive mode even when no terminal is detected",
	})
	registry.Register(&FieldDef{
		Path:    "cli.download_dir",
		Default: ".",
		CLIFlag: "download-dir",
		EnvVar:  "MUNICRUD_DOWNLOAD_DIR",
		Type:    stringType,
		Help:    "Directory where downloaded spreadsheets are saved",
	})
}

func registerRuntimeFields(registry *Registry) {
	registry.Register(&FieldDef{
		Path:    "runtime.log_level",
		Default: "info",
		CLIFlag: "log-level",
		EnvVar:  "MUNICRUD_LOG_LEVEL",
		Type:    stringType,
		Help:    "Log level (debug, info, warn, error)",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_json",
		Default: false,
		CLIFlag: "log-json",
		EnvVar:  "MUNICRUD_LOG_JSON",
		Type:    boolType,
		Help:    "Emit logs as JSON",
	})
	registry.Register(&FieldDef{
		Path:    "runtime.log_file",
		Default: "",
		CLIFlag: "log-file",
		EnvVar:  "MUNICRUD_LOG_FILE",
		Type:    stringType,
		Help:    "Write logs to this file (required to see logs while the grid runs)",
	})
}
