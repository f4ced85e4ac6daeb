package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/municrud/municrud/cli/cmd"
	configcmd "github.com/municrud/municrud/cli/cmd/config"
	"github.com/municrud/municrud/cli/cmd/departments"
	"github.com/municrud/municrud/cli/cmd/directions"
	"github.com/municrud/municrud/cli/cmd/excel"
	"github.com/municrud/municrud/cli/cmd/staff"
	"github.com/municrud/municrud/cli/cmd/version"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/pkg/config"
	"github.com/municrud/municrud/pkg/config/definition"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

type app struct {
	cleanup func()
}

// RootCmd builds the municrud command tree
func RootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "municrud",
		Short: "Municipal staff administration",
		Long: `municrud manages the municipal staff directory: browse and edit records in
an interactive grid, maintain departments and directions and move staff data
in and out of Excel workbooks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			cleanup, err := SetupGlobalConfig(c)
			if err != nil {
				return err
			}
			a.cleanup = cleanup
			return nil
		},
	}
	registerGlobalFlags(root, definition.CreateRegistry())
	root.AddCommand(
		staff.Cmd(),
		departments.Cmd(),
		directions.Cmd(),
		excel.Cmd(),
		configcmd.NewConfigCommand(),
		version.Cmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context) int {
	a := &app{}
	root := a.rootCmd()
	err := root.ExecuteContext(ctx)
	if a.cleanup != nil {
		a.cleanup()
	}
	if err == nil {
		return 0
	}
	var cliErr *helpers.CliError
	if !errors.As(err, &cliErr) {
		helpers.OutputError(err, models.ModeTUI)
	}
	return 1
}

// SetupGlobalConfig loads configuration for the executing command and stores
// the manager, logger and session in its context. The returned func stops the
// config watcher and closes the log file.
func SetupGlobalConfig(c *cobra.Command) (func(), error) {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envFile, err := c.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if _, err := config.LoadEnvFile(envFile); err != nil {
		return nil, helpers.NewCliError(helpers.CodeValidation, "invalid env file", err.Error()).WithCause(err)
	}
	configFile, err := c.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	flags, err := extractCLIFlags(c, definition.CreateRegistry())
	if err != nil {
		return nil, err
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, config.NewYAMLProvider(configFile), config.NewCLIProvider(flags))
	if err != nil {
		return nil, helpers.NewCliError(helpers.CodeValidation, "invalid configuration", err.Error()).WithCause(err)
	}
	_, fullscreen := c.Annotations[staff.FullscreenAnnotation]
	log, logCloser, err := logger.Setup(logger.Options{
		Level: cfg.Runtime.LogLevel,
		JSON:  cfg.Runtime.LogJSON,
		File:  cfg.Runtime.LogFile,
		Quiet: fullscreen,
	})
	if err != nil {
		_ = manager.Close(ctx)
		return nil, err
	}
	session := cmd.SessionFromContext(ctx, cfg)
	manager.OnChange(func(next *config.Config) {
		session.SetToken(next.Session.Token.Value())
		log.Debug("configuration reloaded")
	})
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithManager(ctx, manager)
	ctx = context.WithValue(ctx, helpers.ConfigKey, cfg)
	ctx = cmd.ContextWithSession(ctx, session)
	c.SetContext(ctx)
	log.Debug("configuration loaded", "config_file", configFile, "api", cfg.API.BaseURL)
	cleanup := func() {
		if err := manager.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to stop config watcher", "error", err)
		}
		_ = logCloser.Close()
	}
	return cleanup, nil
}
