package directions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

// Cmd returns the directions command group
func Cmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "directions",
		Aliases: []string{"dirs"},
		Short:   "Manage municipal directions and their addresses",
	}
	c.AddCommand(listCmd(), createCmd(), updateCmd(), deleteCmd())
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
		Short: "List directions with their index",
		RunE:  run(listHandler),
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <address>",
		Short: "Add a direction",
		Args:  cobra.ExactArgs(2),
		RunE:  run(createHandler),
	}
}

func updateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "update <index>",
		Short: "Change the name or address of the direction at index",
		Args:  cobra.ExactArgs(1),
		RunE:  run(updateHandler),
	}
	c.Flags().String("name", "", "New direction name")
	c.Flags().String("address", "", "New address")
	return c
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the direction at index",
		Args:  cobra.ExactArgs(1),
		RunE:  run(deleteHandler),
	}
}

type indexedDirection struct {
	Index int `json:"index"`
	staff.Direction
}

func listHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	dirs, err := executor.Client().ListDirections(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("directions loaded", "count", len(dirs))
	if executor.GetMode() == models.ModeJSON {
		out := make([]indexedDirection, len(dirs))
		for i, d := range dirs {
			out[i] = indexedDirection{Index: i, Direction: d}
		}
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), map[string]any{
			"directions": out,
			"total":      len(out),
		}, helpers.ShouldUseColor(cobraCmd))
	}
	if len(dirs) == 0 {
		fmt.Fprintln(cobraCmd.OutOrStdout(), styles.HelpStyle.Render("No directions"))
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
	for i, d := range dirs {
		t.Row(strconv.Itoa(i), d.Name, d.Address)
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), t.Render())
	return nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, helpers.NewCliError(helpers.CodeValidation, fmt.Sprintf("invalid direction index %q", raw))
	}
	return index, nil
}

func requireEditor(executor *cmd.CommandExecutor) error {
	if !executor.Session().Role().CanEdit() {
		return helpers.NewCliError(helpers.CodeValidation, "your role cannot manage directions")
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
	if err := helpers.ValidateRequired(args[1], "address"); err != nil {
		return err
	}
	msg, err := executor.Client().CreateDirection(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("direction %q created", args[0])
	}
	return report(cobraCmd, executor.GetMode(), msg)
}

func updateHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	if err := requireEditor(executor); err != nil {
		return err
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	var update api.DirectionUpdate
	if cobraCmd.Flags().Changed("name") {
		name := helpers.GetFlagStringWithDefault(cobraCmd, "name", "")
		if err := helpers.ValidateRequired(name, "name"); err != nil {
			return err
		}
		update.Name = &name
	}
	if cobraCmd.Flags().Changed("address") {
		address := helpers.GetFlagStringWithDefault(cobraCmd, "address", "")
		if err := helpers.ValidateRequired(address, "address"); err != nil {
			return err
		}
		update.Address = &address
	}
	if update.Name == nil && update.Address == nil {
		return helpers.NewCliError(helpers.CodeValidation, "set --name, --address or both")
	}
	msg, err := executor.Client().UpdateDirection(ctx, index, update)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("direction %d updated", index)
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
	msg, err := executor.Client().DeleteDirection(ctx, index)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("direction %d deleted", index)
	}
	return report(cobraCmd, executor.GetMode(), msg)
}
