package config

import (
	"context"
	"time"

	"github.com/municrud/municrud/pkg/config/definition"
)

// Config represents the complete configuration for the municrud client.
type Config struct {
	API     APIConfig     `koanf:"api"     validate:"required"`
	Session SessionConfig `koanf:"session"`
	Grid    GridConfig    `koanf:"grid"    validate:"required"`
	CLI     CLIConfig     `koanf:"cli"`
	Runtime RuntimeConfig `koanf:"runtime"`
}

// APIConfig contains the backend connection settings.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url" env:"MUNICRUD_API_URL"`
	Timeout time.Duration `koanf:"timeout"  validate:"min=0"        env:"MUNICRUD_API_TIMEOUT"`
}

// SessionConfig identifies the logged-in staff member.
type SessionConfig struct {
	Token SensitiveString `koanf:"token" env:"MUNICRUD_TOKEN" sensitive:"true"`
	Role  string          `koanf:"role"  env:"MUNICRUD_ROLE"                    validate:"omitempty,viewer_role"`
}

// GridConfig tunes the interactive grid.
type GridConfig struct {
	PageSize            int           `koanf:"page_size"             validate:"page_size" env:"MUNICRUD_PAGE_SIZE"`
	SearchDebounce      time.Duration `koanf:"search_debounce"       validate:"min=0"     env:"MUNICRUD_SEARCH_DEBOUNCE"`
	DepartmentCacheSize int           `koanf:"department_cache_size" validate:"min=1"     env:"MUNICRUD_DEPARTMENT_CACHE_SIZE"`
}

// CLIConfig contains output preferences.
type CLIConfig struct {
	DefaultFormat string `koanf:"default_format" validate:"oneof=auto json tui" env:"MUNICRUD_FORMAT"`
	NoColor       bool   `koanf:"no_color"                                      env:"MUNICRUD_NO_COLOR"`
	Interactive   bool   `koanf:"interactive"                                   env:"MUNICRUD_INTERACTIVE"`
	DownloadDir   string `koanf:"download_dir"                                  env:"MUNICRUD_DOWNLOAD_DIR"`
}

// RuntimeConfig contains logging settings.
type RuntimeConfig struct {
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error" env:"MUNICRUD_LOG_LEVEL"`
	LogJSON  bool   `koanf:"log_json"                                         env:"MUNICRUD_LOG_JSON"`
	LogFile  string `koanf:"log_file"                                         env:"MUNICRUD_LOG_FILE"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns which source (env, CLI, YAML, default) provided a key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Watch monitors the source for changes.
	Watch(ctx context.Context, callback func()) error
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config populated from the field registry.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		API: APIConfig{
			BaseURL: getString(registry, "api.base_url"),
			Timeout: getDuration(registry, "api.timeout"),
		},
		Session: SessionConfig{
			Token: SensitiveString(getString(registry, "session.token")),
			Role:  getString(registry, "session.role"),
		},
		Grid: GridConfig{
			PageSize:            getInt(registry, "grid.page_size"),
			SearchDebounce:      getDuration(registry, "grid.search_debounce"),
			DepartmentCacheSize: getInt(registry, "grid.department_cache_size"),
		},
		CLI: CLIConfig{
			DefaultFormat: getString(registry, "cli.default_format"),
			NoColor:       getBool(registry, "cli.no_color"),
			Interactive:   getBool(registry, "cli.interactive"),
			DownloadDir:   getString(registry, "cli.download_dir"),
		},
		Runtime: RuntimeConfig{
			LogLevel: getString(registry, "runtime.log_level"),
			LogJSON:  getBool(registry, "runtime.log_json"),
			LogFile:  getString(registry, "runtime.log_file"),
		},
	}
}

func getString(registry *definition.Registry, path string) string {
	if s, ok := registry.GetDefault(path).(string); ok {
		return s
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if i, ok := registry.GetDefault(path).(int); ok {
		return i
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if b, ok := registry.GetDefault(path).(bool); ok {
		return b
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if d, ok := registry.GetDefault(path).(time.Duration); ok {
		return d
	}
	return 0
}
