package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/pkg/config"
	"github.com/municrud/municrud/pkg/logger"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration inspection and diagnostics",
	}
	c.AddCommand(
		NewConfigShowCommand(),
		NewConfigDiagnosticsCommand(),
		NewConfigValidateCommand(),
	)
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the effective configuration with sensitive values redacted.
With --sources each key also shows whether it came from a flag, the YAML
file, the environment or the defaults.`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigShow,
				TUI:  handleConfigShow,
			}, args)
		},
	}
	c.Flags().StringP("output", "o", "", "Output format (json, yaml, table); defaults to the detected mode")
	c.Flags().BoolP("sources", "s", false, "Show configuration sources")
	return c
}

func handleConfigShow(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	log.Debug("executing config show command", "mode", executor.GetMode())
	format := helpers.GetFlagStringWithDefault(cobraCmd, "output", "")
	if format == "" {
		format = "table"
		if executor.GetMode() == models.ModeJSON {
			format = "json"
		}
	}
	if err := helpers.ValidateEnum(format, []string{"json", "yaml", "table"}, "output"); err != nil {
		return err
	}
	var sources map[string]config.SourceType
	if helpers.GetFlagBoolWithDefault(cobraCmd, "sources", false) {
		sources = collectSources(config.ManagerFromContext(ctx), executor.Config())
	}
	return formatConfigOutput(cobraCmd.OutOrStdout(), executor.Config(), sources, format, helpers.ShouldUseColor(cobraCmd))
}

// NewConfigDiagnosticsCommand creates the config diagnostics subcommand
func NewConfigDiagnosticsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "diagnostics",
		Short: "Run configuration diagnostics",
		Long: `Report the working directory, validation result, source of every key
and the environment variables the client reads.`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigDiagnosticsJSON,
				TUI:  handleConfigDiagnosticsTUI,
			}, args)
		},
	}
	return c
}

type diagnostics struct {
	WorkingDirectory string                       `json:"working_directory"`
	Configuration    map[string]string            `json:"configuration"`
	Valid            bool                         `json:"valid"`
	Error            string                       `json:"error,omitempty"`
	Sources          map[string]config.SourceType `json:"sources"`
	Environment      map[string]string            `json:"environment"`
}

func runDiagnostics(ctx context.Context, executor *cmd.CommandExecutor) (*diagnostics, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	manager := config.ManagerFromContext(ctx)
	cfg := executor.Config()
	d := &diagnostics{
		WorkingDirectory: cwd,
		Configuration:    flattenConfig(cfg),
		Valid:            true,
		Sources:          collectSources(manager, cfg),
		Environment:      environment(),
	}
	if err := manager.Service.Validate(cfg); err != nil {
		d.Valid = false
		d.Error = err.Error()
	}
	return d, nil
}

func handleConfigDiagnosticsJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	d, err := runDiagnostics(ctx, executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), d, helpers.ShouldUseColor(cobraCmd))
}

func handleConfigDiagnosticsTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	d, err := runDiagnostics(ctx, executor)
	if err != nil {
		return err
	}
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, styles.RenderTitle("Configuration diagnostics"))
	fmt.Fprintf(out, "Working directory: %s\n\n", d.WorkingDirectory)
	if d.Valid {
		fmt.Fprintln(out, styles.SuccessStyle.Render("✓ configuration is valid"))
	} else {
		fmt.Fprintln(out, styles.ErrorStyle.Render("✗ "+d.Error))
	}
	fmt.Fprintln(out, "\nPrecedence, highest first: flags, YAML file, environment, defaults")
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(d.Configuration, d.Sources))
	fmt.Fprintln(out)
	envRows := make([][]string, 0, len(d.Environment))
	for _, name := range sortedKeys(d.Environment) {
		envRows = append(envRows, []string{name, d.Environment[name]})
	}
	fmt.Fprintln(out, newTable([]string{"Environment variable", "Value"}, envRows).Render())
	return nil
}

// NewConfigValidateCommand creates the config validate subcommand
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: handleConfigValidate,
				TUI:  handleConfigValidate,
			}, args)
		},
	}
}

func handleConfigValidate(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	service := config.ManagerFromContext(ctx).Service
	if err := service.Validate(executor.Config()); err != nil {
		return helpers.NewCliError(helpers.CodeValidation, "configuration is invalid", err.Error()).WithCause(err)
	}
	if executor.GetMode() == models.ModeJSON {
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), map[string]any{"valid": true}, helpers.ShouldUseColor(cobraCmd))
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ configuration is valid"))
	return nil
}

// formatConfigOutput writes the redacted configuration in the requested format
func formatConfigOutput(
	w io.Writer,
	cfg *config.Config,
	sources map[string]config.SourceType,
	format string,
	color bool,
) error {
	output := map[string]any{"config": flattenConfig(cfg)}
	if len(sources) > 0 {
		output["sources"] = sources
	}
	switch format {
	case "json":
		return helpers.WriteJSON(w, output, color)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	case "table":
		_, err := fmt.Fprintln(w, renderTable(flattenConfig(cfg), sources))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle
			}
			return styles.CellStyle
		})
}

func renderTable(flat map[string]string, sources map[string]config.SourceType) string {
	headers := []string{"Key", "Value"}
	if sources != nil {
		headers = append(headers, "Source")
	}
	rows := make([][]string, 0, len(flat))
	for _, key := range sortedKeys(flat) {
		row := []string{key, flat[key]}
		if sources != nil {
			source := sources[key]
			if source == "" {
				source = config.SourceDefault
			}
			row = append(row, string(source))
		}
		rows = append(rows, row)
	}
	return newTable(headers, rows).Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flattenConfig walks the koanf tags into dotted keys. Sensitive values are
// rendered through their String method, which redacts them.
func flattenConfig(cfg *config.Config) map[string]string {
	out := make(map[string]string)
	walkConfig("", reflect.ValueOf(cfg).Elem(), func(key string, v reflect.Value) {
		out[key] = fmt.Sprint(v.Interface())
	})
	return out
}

func walkConfig(prefix string, val reflect.Value, visit func(key string, v reflect.Value)) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		fv := val.Field(i)
		if fv.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0)) {
			walkConfig(key, fv, visit)
			continue
		}
		visit(key, fv)
	}
}

func collectSources(manager *config.Manager, cfg *config.Config) map[string]config.SourceType {
	sources := make(map[string]config.SourceType)
	walkConfig("", reflect.ValueOf(cfg).Elem(), func(key string, _ reflect.Value) {
		sources[key] = manager.GetSource(key)
	})
	return sources
}

// environment lists the variables the loader reads with redacted values
func environment() map[string]string {
	out := make(map[string]string)
	for _, mapping := range config.GenerateEnvMappings() {
		value, ok := os.LookupEnv(mapping.EnvVar)
		switch {
		case !ok:
			value = "(not set)"
		case config.IsSensitiveConfigPath(mapping.ConfigPath):
			value = "[REDACTED]"
		}
		out[mapping.EnvVar] = value
	}
	return out
}
