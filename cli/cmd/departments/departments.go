package departments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

// Cmd returns the departments command group
func Cmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"deps"},
		Short:   "Manage the municipal department catalog",
	}
	c.AddCommand(listCmd(), createCmd(), renameCmd(), deleteCmd())
	return c
}

func run(handler cmd.HandlerFunc) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
			JSON: handler,
			TUI:  handler,
		}, args)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List departments with their index",
		RunE:  run(listHandler),
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Add a department",
		Args:  cobra.ExactArgs(1),
		RunE:  run(createHandler),
	}
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <index> <new-name>",
		Short: "Rename the department at index",
		Args:  cobra.ExactArgs(2),
		RunE:  run(renameHandler),
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the department at index",
		Args:  cobra.ExactArgs(1),
		RunE:  run(deleteHandler),
	}
}

type indexedDepartment struct {
	Index int `json:"index"`
	staff.Department
}

func listHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	deps, err := executor.Client().ListDepartments(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("departments loaded", "count", len(deps))
	if executor.GetMode() == models.ModeJSON {
		out := make([]indexedDepartment, len(deps))
		for i, d := range deps {
			out[i] = indexedDepartment{Index: i, Department: d}
		}
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), map[string]any{
			"departments": out,
			"total":       len(out),
		}, helpers.ShouldUseColor(cobraCmd))
	}
	if len(deps) == 0 {
		fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render("No departments"))
		return nil
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("#", "Name", "Address").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle
			}
			return styles.CellStyle
		})
	for i, d := range deps {
		t.Row(strconv.Itoa(i), d.Name, d.Address)
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), t.Render())
	return nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, helpers.NewCliError(helpers.CodeValidation, fmt.Sprintf("invalid department index %q", raw))
	}
	return index, nil
}

func requireEditor(executor *cmd.CommandExecutor) error {
	if !executor.Session().Role().CanEdit() {
		return helpers.NewCliError(helpers.CodeValidation, "your role cannot manage departments")
	}
	return nil
}

func report(cobraCmd *cobra.Command, mode models.Mode, msg string) error {
	if mode == models.ModeJSON {
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), map[string]string{"message": msg}, helpers.ShouldUseColor(cobraCmd))
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ "+msg))
	return nil
}

func createHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	if err := requireEditor(executor); err != nil {
		return err
	}
	if err := helpers.ValidateRequired(args[0], "name"); err != nil {
		return err
	}
	msg, err := executor.Client().CreateDepartment(ctx, args[0])
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("department %q created", args[0])
	}
	return report(cobraCmd, executor.GetMode(), msg)
}

func renameHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	if err := requireEditor(executor); err != nil {
		return err
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	if err := helpers.ValidateRequired(args[1], "new-name"); err != nil {
		return err
	}
	msg, err := executor.Client().RenameDepartment(ctx, index, args[1])
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("department %d renamed to %q", index, args[1])
	}
	return report(cobraCmd, executor.GetMode(), msg)
}

func deleteHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	if err := requireEditor(executor); err != nil {
		return err
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	msg, err := executor.Client().DeleteDepartment(ctx, index)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("department %d deleted", index)
	}
	return report(cobraCmd, executor.GetMode(), msg)
}
