package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/components"
	"github.com/municrud/municrud/engine/grid"
	domain "github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

func newUserFromFlags(cobraCmd *cobra.Command) domain.NewUser {
	get := func(name string) string { return helpers.GetFlagStringWithDefault(cobraCmd, name, "") }
	return domain.NewUser{
		Identifier: get("rut"),
		FirstNames: get("names"),
		LastNames:  get("last-names"),
		Email:      get("email"),
		Password:   get("password"),
		Role:       domain.Role(get("user-role")),
		Department: get("department"),
		Address:    get("address"),
		JobNumber:  get("job-number"),
		Extension:  get("extension"),
	}
}

// checkCreator rejects creators that cannot assign the requested role
func checkCreator(viewer domain.Role, user domain.NewUser) error {
	if !viewer.CanEdit() {
		return helpers.NewCliError(helpers.CodeValidation, "your role cannot create staff records").WithCause(grid.ErrReadOnly)
	}
	if user.Role != domain.RoleUser && !viewer.CanChangeRoles() {
		return grid.ErrForbiddenColumn
	}
	return nil
}

func submitUser(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, user domain.NewUser) error {
	if err := checkCreator(executor.Session().Role(), user); err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("creating staff", "user", user.Redacted())
	msg, err := executor.Client().CreateUser(ctx, user)
	if err != nil {
		return err
	}
	return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: msg, Identifier: user.Identifier})
}

func createJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	return submitUser(ctx, cobraCmd, executor, newUserFromFlags(cobraCmd))
}

func createTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	user := newUserFromFlags(cobraCmd)
	departments, err := executor.Client().ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load departments: %w", err)
	}
	form := newUserForm(&user, grid.DepartmentNames(departments), executor.Session().Role())
	completed, err := components.RunForm(ctx, form)
	if err != nil {
		return fmt.Errorf("failed to show form: %w", err)
	}
	if !completed {
		return writeResult(cobraCmd, executor.GetMode(), messageResult{Message: "create canceled", Canceled: true})
	}
	return submitUser(ctx, cobraCmd, executor, user)
}

// cellValidator adapts the grid's per-column rules to a huh input
func cellValidator(col domain.ColumnID) func(string) error {
	return func(s string) error {
		if err := domain.ValidateCell(col, s); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) && len(verr.Fields) > 0 {
				return errors.New(verr.Fields[0].Message)
			}
			return err
		}
		return nil
	}
}

func identifierValidator(s string) error {
	if !domain.ValidIdentifier(s) {
		return errors.New("must look like 12.345.678-9")
	}
	return nil
}

func requiredValidator(s string) error {
	if s == "" {
		return errors.New("is required")
	}
	return nil
}

func newUserForm(user *domain.NewUser, departments []string, viewer domain.Role) *huh.Form {
	roles := []domain.Role{domain.RoleUser}
	if viewer.CanChangeRoles() {
		roles = domain.Roles
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	deptOptions := huh.NewOptions(departments...)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("RUT").Placeholder("12.345.678-9").
				Value(&user.Identifier).Validate(identifierValidator),
			huh.NewInput().Title("Names").
				Value(&user.FirstNames).Validate(cellValidator(domain.ColumnFirstNames)),
			huh.NewInput().Title("Last names").
				Value(&user.LastNames).Validate(cellValidator(domain.ColumnLastNames)),
			huh.NewInput().Title("Email").
				Value(&user.Email).Validate(cellValidator(domain.ColumnEmail)),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
				Value(&user.Password).Validate(requiredValidator),
		),
		huh.NewGroup(
			huh.NewSelect[domain.Role]().Title("Role").
				Options(huh.NewOptions(roles...)...).
				Value(&user.Role),
			huh.NewSelect[string]().Title("Department").
				Options(deptOptions...).
				Value(&user.Department),
			huh.NewInput().Title("Address").
				Value(&user.Address).Validate(cellValidator(domain.ColumnAddress)),
			huh.NewInput().Title("Job number").
				Value(&user.JobNumber).Validate(cellValidator(domain.ColumnJobNumber)),
			huh.NewInput().Title("Extension").
				Value(&user.Extension).Validate(cellValidator(domain.ColumnExtension)),
		),
	)
}
