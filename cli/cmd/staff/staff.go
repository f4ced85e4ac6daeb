package staff

import (
	"github.com/municrud/municrud/cli/cmd"
	"github.com/spf13/cobra"
)

// FullscreenAnnotation marks commands that take over the terminal, so logs
// must not be written to stdout while they run.
const FullscreenAnnotation = "municrud/fullscreen"

// Cmd returns the staff command group
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "staff",
		Aliases: []string{"users"},
		Short:   "Browse and manage municipal staff records",
	}
	cmd.AddCommand(
		GridCmd(),
		ListCmd(),
		UpdateCmd(),
		DeleteCmd(),
		PromoteCmd(),
		CreateCmd(),
	)
	return cmd
}

// GridCmd returns the interactive grid command
func GridCmd() *cobra.Command {
	c := &cobra.Command{
		Use:         "grid",
		Short:       "Open the interactive staff grid",
		Long:        "Browse, search, sort and edit staff records page by page.",
		Annotations: map[string]string{FullscreenAnnotation: "true"},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: gridJSON,
				TUI:  gridTUI,
			}, args)
		},
	}
	return c
}

// ListCmd returns the single page listing command
func ListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List one page of staff records",
		Example: `  municrud staff list --page 2 --page-size 20
  municrud staff list --search-column email --search muni.cl
  municrud staff list --sort-column apellidos --order desc`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: listJSON,
				TUI:  listTUI,
			}, args)
		},
	}
	c.Flags().Int("page", 1, "Page number, starting at 1")
	c.Flags().String("search-column", "", "Column to search in")
	c.Flags().String("search", "", "Value to search for")
	c.Flags().String("sort-column", "", "Column to sort by")
	c.Flags().String("order", "asc", "Sort direction (asc, desc, normal)")
	return c
}

// UpdateCmd returns the single cell update command
func UpdateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "update <rut> <column> <value>",
		Short:   "Change one field of a staff record",
		Example: `  municrud staff update 12.345.678-9 email ana@muni.cl`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: updateHandler,
				TUI:  updateHandler,
			}, args)
		},
	}
	return c
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete <rut>",
		Short: "Delete a staff record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: deleteHandler,
				TUI:  deleteHandler,
			}, args)
		},
	}
	c.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return c
}

// PromoteCmd returns the role toggle command
func PromoteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "promote <rut>",
		Short: "Toggle a staff member between user and admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: promoteHandler,
				TUI:  promoteHandler,
			}, args)
		},
	}
	c.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return c
}

// CreateCmd returns the create-user command
func CreateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "create",
		Short: "Register a new staff member",
		Long:  "Opens a form in interactive terminals. In JSON mode every field is read from flags.",
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: true}, cmd.ModeHandlers{
				JSON: createJSON,
				TUI:  createTUI,
			}, args)
		},
	}
	c.Flags().String("rut", "", "National identifier, e.g. 12.345.678-9")
	c.Flags().String("names", "", "First names")
	c.Flags().String("last-names", "", "Last names")
	c.Flags().String("email", "", "Email address")
	c.Flags().String("password", "", "Initial password")
	c.Flags().String("user-role", "user", "Role (user, admin, superAdmin)")
	c.Flags().String("department", "", "Department name")
	c.Flags().String("address", "", "Office address")
	c.Flags().String("job-number", "", "Municipal job number")
	c.Flags().String("extension", "", "Phone extension")
	return c
}
