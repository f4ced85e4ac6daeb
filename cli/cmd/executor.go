package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/engine/grid"
	"github.com/municrud/municrud/engine/spreadsheet"
	"github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/config"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

type sessionKey struct{}

// ContextWithSession stores the process-wide session so config reloads can
// update the token seen by every client.
func ContextWithSession(ctx context.Context, s *api.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the stored session or a new one built from cfg
func SessionFromContext(ctx context.Context, cfg *config.Config) *api.Session {
	if s, ok := ctx.Value(sessionKey{}).(*api.Session); ok && s != nil {
		return s
	}
	role, _ := staff.ParseRole(cfg.Session.Role) //nolint:errcheck // empty role is resolved later
	return api.NewSession(cfg.Session.Token.Value(), role)
}

// CommandExecutor handles the setup every command shares: mode detection,
// the gateway client and the viewer profile.
type CommandExecutor struct {
	mode    models.Mode
	cfg     *config.Config
	session *api.Session
	client  *api.Client
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// ModeHandlers contains handlers for different execution modes.
type ModeHandlers struct {
	JSON HandlerFunc
	TUI  HandlerFunc
}

// ExecutorOptions allows customization of the command executor
type ExecutorOptions struct {
	// RequireAuth builds a gateway client and resolves the viewer profile.
	RequireAuth bool
}

// NewCommandExecutor creates a new command executor with all necessary setup.
func NewCommandExecutor(cmd *cobra.Command, opts ExecutorOptions) (*CommandExecutor, error) {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	mode := helpers.DetectMode(cmd)
	log.Debug("detected execution mode", "mode", mode)
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration manager not found in context")
	}
	executor := &CommandExecutor{
		mode:    mode,
		cfg:     cfg,
		session: SessionFromContext(ctx, cfg),
	}
	if !opts.RequireAuth {
		return executor, nil
	}
	if executor.session.Token() == "" {
		return nil, helpers.NewCliError(
			helpers.CodeAuth,
			"session token is required",
			"set session.token in the config file, MUNICRUD_TOKEN, or pass --token",
		)
	}
	client, err := api.NewClient(cfg, executor.session)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	executor.client = client
	if err := executor.resolveViewer(ctx); err != nil {
		return nil, err
	}
	return executor, nil
}

// resolveViewer asks the backend who owns the token unless the role is configured.
func (e *CommandExecutor) resolveViewer(ctx context.Context) error {
	if e.session.Role() != "" {
		return nil
	}
	me, err := e.client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve the current user: %w", err)
	}
	if !me.Role.Valid() {
		return helpers.NewCliError(helpers.CodeAuth, fmt.Sprintf("unexpected role %q for current user", me.Role))
	}
	e.session.SetProfile(me.Role, me.FullName())
	logger.FromContext(ctx).Debug("resolved viewer", "role", me.Role)
	return nil
}

// Execute runs the appropriate handler based on the detected mode.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handlers ModeHandlers, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	switch e.mode {
	case models.ModeJSON:
		if handlers.JSON == nil {
			return fmt.Errorf("JSON mode handler not implemented")
		}
		return handlers.JSON(ctx, cmd, e, args)
	case models.ModeTUI:
		if handlers.TUI == nil {
			return fmt.Errorf("TUI mode handler not implemented")
		}
		return handlers.TUI(ctx, cmd, e, args)
	default:
		return fmt.Errorf("unsupported mode: %s", e.mode)
	}
}

// Client returns the gateway client, nil unless RequireAuth was set.
func (e *CommandExecutor) Client() *api.Client {
	return e.client
}

func (e *CommandExecutor) Session() *api.Session {
	return e.session
}

func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

// GetMode returns the detected execution mode.
func (e *CommandExecutor) GetMode() models.Mode {
	return e.mode
}

// GridOptions maps the grid settings onto controller options
func (e *CommandExecutor) GridOptions() grid.Options {
	return grid.Options{
		PageSize:            e.cfg.Grid.PageSize,
		SearchDebounce:      e.cfg.Grid.SearchDebounce,
		DepartmentCacheSize: e.cfg.Grid.DepartmentCacheSize,
	}
}

// DownloadStore returns the store downloaded workbooks are written to
func (e *CommandExecutor) DownloadStore() *spreadsheet.Store {
	return spreadsheet.NewOSStore(e.cfg.CLI.DownloadDir)
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, opts ExecutorOptions, handlers ModeHandlers, args []string) error {
	executor, err := NewCommandExecutor(cmd, opts)
	if err != nil {
		return HandleCommonErrors(err, helpers.DetectMode(cmd))
	}
	return HandleCommonErrors(executor.Execute(cmd.Context(), cmd, handlers, args), executor.GetMode())
}

// HandleCommonErrors provides consistent error handling across all commands.
func HandleCommonErrors(err error, mode models.Mode) error {
	if err == nil {
		return nil
	}
	cliErr := categorizeError(err)
	if cliErr == nil {
		cliErr = helpers.NewCliError(helpers.CodeInternal, err.Error()).WithCause(err)
	}
	helpers.OutputError(cliErr, mode)
	return cliErr
}

// categorizeError converts errors to structured CLI errors
func categorizeError(err error) *helpers.CliError {
	var cliErr *helpers.CliError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	var validation *staff.ValidationError
	var apiErr *api.APIError
	switch {
	case errors.Is(err, context.Canceled):
		return helpers.NewCliError(helpers.CodeCanceled, "Operation was canceled by user")
	case errors.Is(err, context.DeadlineExceeded), helpers.IsTimeoutError(err):
		return helpers.NewCliError(helpers.CodeTimeout, "Operation timed out")
	case errors.As(err, &validation):
		return helpers.NewCliError(helpers.CodeValidation, "Invalid input", err.Error()).WithCause(err)
	case errors.Is(err, grid.ErrForbiddenColumn), errors.Is(err, grid.ErrReadOnly),
		errors.Is(err, grid.ErrPromoteSuperAdmin), errors.Is(err, staff.ErrImmutableIdentifier):
		return helpers.NewCliError(helpers.CodeValidation, "Operation not allowed", err.Error()).WithCause(err)
	case helpers.IsAuthError(err), errors.Is(err, api.ErrNoToken):
		return helpers.NewCliError(helpers.CodeAuth, "Authentication failed", err.Error()).WithCause(err)
	case errors.As(err, &apiErr):
		return helpers.NewCliError(helpers.CodeAPI, "Request rejected by the server", err.Error()).
			WithContext("status", apiErr.StatusCode).
			WithCause(err)
	case helpers.IsNetworkError(err):
		return helpers.NewCliError(helpers.CodeNetwork, "Network connection failed", err.Error()).WithCause(err)
	default:
		return nil
	}
}
