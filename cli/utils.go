package cli

import (
	"fmt"
	"time"

	"github.com/municrud/municrud/pkg/config/definition"
	"github.com/spf13/cobra"
)

// registerGlobalFlags declares one persistent flag per registry field that
// has a flag name, with the registry default.
func registerGlobalFlags(cmd *cobra.Command, registry *definition.Registry) {
	flags := cmd.PersistentFlags()
	for _, field := range registry.Fields() {
		if field.CLIFlag == "" {
			continue
		}
		switch def := field.Default.(type) {
		case string:
			flags.StringP(field.CLIFlag, field.Shorthand, def, field.Help)
		case int:
			flags.IntP(field.CLIFlag, field.Shorthand, def, field.Help)
		case bool:
			flags.BoolP(field.CLIFlag, field.Shorthand, def, field.Help)
		case time.Duration:
			flags.DurationP(field.CLIFlag, field.Shorthand, def, field.Help)
		default:
			panic(fmt.Sprintf("unsupported flag type %T for %s", field.Default, field.Path))
		}
	}
	flags.String("config", "municrud.yaml", "Path to the YAML config file")
	flags.String("env-file", ".env", "Path to a dotenv file loaded before the environment is read")
}

// extractCLIFlags collects the registry flags the user explicitly set.
// Unchanged flags are left out so they do not shadow the file or the environment.
func extractCLIFlags(cmd *cobra.Command, registry *definition.Registry) (map[string]any, error) {
	out := make(map[string]any)
	for _, field := range registry.Fields() {
		if field.CLIFlag == "" || !cmd.Flags().Changed(field.CLIFlag) {
			continue
		}
		var (
			value any
			err   error
		)
		switch field.Default.(type) {
		case string:
			value, err = cmd.Flags().GetString(field.CLIFlag)
		case int:
			value, err = cmd.Flags().GetInt(field.CLIFlag)
		case bool:
			value, err = cmd.Flags().GetBool(field.CLIFlag)
		case time.Duration:
			value, err = cmd.Flags().GetDuration(field.CLIFlag)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read flag --%s: %w", field.CLIFlag, err)
		}
		out[field.CLIFlag] = value
	}
	return out, nil
}
