package staff

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/components"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/grid"
	domain "github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

type messageResult struct {
	Message    string `json:"message"`
	Identifier string `json:"rut,omitempty"`
	Canceled   bool   `json:"canceled,omitempty"`
}

func writeResult(cobraCmd *cobra.Command, mode models.Mode, res messageResult) error {
	if mode == models.ModeJSON {
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), res, helpers.ShouldUseColor(cobraCmd))
	}
	text := res.Message
	if res.Canceled {
		fmt.Fprintln(cobraCmd.OutOrStdout(), styles.WarningStyle.Render(text))
		return nil
	}
	if text == "" {
		text = "done"
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ "+text))
	return nil
}

func updateHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	identifier, rawColumn, value := args[0], args[1], args[2]
	viewer := executor.Session().Role()
	if !viewer.CanEdit() {
		return helpers.NewCliError(helpers.CodeValidation, "your role cannot edit staff records").WithCause(grid.ErrReadOnly)
	}
	column, err := domain.ParseColumn(rawColumn)
	if err != nil {
		return helpers.NewCliError(helpers.CodeValidation, err.Error())
	}
	if column == domain.ColumnIdentifier {
		return domain.ErrImmutableIdentifier
	}
	if column == domain.ColumnRole && !viewer.CanChangeRoles() {
		return grid.ErrForbiddenColumn
	}
	if err := domain.ValidateCell(column, value); err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("updating cell", "rut", identifier, "column", column)
	msg, err := executor.Client().UpdateCell(ctx, api.CellUpdate{
		Identifier: identifier,
		Column:     column,
		Value:      value,
		ViewerRole: viewer,
		PageSize:   executor.Config().Grid.PageSize,
		Page:       1,
	})
	if err != nil {
		return err
	}
	return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: msg, Identifier: identifier})
}

// findByIdentifier looks a record up through the search endpoint
func findByIdentifier(ctx context.Context, client api.StaffService, identifier string) (domain.Row, error) {
	page, err := client.List(ctx, api.ListParams{
		SearchColumn: domain.ColumnIdentifier,
		SearchValue:  identifier,
		PageSize:     api.PageSizes[0],
		Page:         1,
	})
	if err != nil {
		return domain.Row{}, fmt.Errorf("failed to look up %s: %w", identifier, err)
	}
	for _, row := range page.Rows {
		if row.Identifier == identifier {
			return row, nil
		}
	}
	return domain.Row{}, helpers.NewCliError(helpers.CodeValidation, fmt.Sprintf("no staff record with rut %s", identifier))
}

// confirm asks through a huh form unless --yes was passed. JSON mode never prompts.
func confirm(ctx context.Context, cobraCmd *cobra.Command, mode models.Mode, prompt string) (bool, error) {
	if helpers.GetFlagBoolWithDefault(cobraCmd, "yes", false) {
		return true, nil
	}
	if mode == models.ModeJSON {
		return false, helpers.NewCliError(helpers.CodeMissingArg, "confirmation required", "pass --yes to confirm in non-interactive mode")
	}
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	completed, err := components.RunForm(ctx, form)
	if err != nil {
		return false, fmt.Errorf("failed to show confirmation: %w", err)
	}
	return completed && ok, nil
}

func deleteHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	identifier := args[0]
	if !executor.Session().Role().CanEdit() {
		return helpers.NewCliError(helpers.CodeValidation, "your role cannot delete staff records").WithCause(grid.ErrReadOnly)
	}
	client := executor.Client()
	row, err := findByIdentifier(ctx, client, identifier)
	if err != nil {
		return err
	}
	ok, err := confirm(ctx, cobraCmd, executor.GetMode(), fmt.Sprintf("Delete %s (%s)?", row.FullName(), row.Identifier))
	if err != nil {
		return err
	}
	if !ok {
		return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: "delete canceled", Identifier: identifier, Canceled: true})
	}
	if err := client.DeleteRow(ctx, identifier); err != nil {
		return err
	}
	return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: identifier + " deleted", Identifier: identifier})
}

func promoteHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	identifier := args[0]
	if !executor.Session().Role().CanChangeRoles() {
		return grid.ErrForbiddenColumn
	}
	client := executor.Client()
	row, err := findByIdentifier(ctx, client, identifier)
	if err != nil {
		return err
	}
	if row.Role == domain.RoleSuperAdmin {
		return grid.ErrPromoteSuperAdmin
	}
	ok, err := confirm(ctx, cobraCmd, executor.GetMode(), grid.PromotePrompt(row))
	if err != nil {
		return err
	}
	if !ok {
		return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: "role change canceled", Identifier: identifier, Canceled: true})
	}
	msg, err := client.PromoteRole(ctx, identifier)
	if err != nil {
		return err
	}
	return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: msg, Identifier: identifier})
}
