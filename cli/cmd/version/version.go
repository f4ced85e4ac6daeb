package version

import (
	"context"
	"fmt"

	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/components"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/pkg/version"
	"github.com/spf13/cobra"
)

// Cmd prints build information. It needs no session.
func Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{}, cmd.ModeHandlers{
				JSON: versionJSON,
				TUI:  versionTUI,
			}, args)
		},
	}
}

func versionJSON(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), version.Get(), helpers.ShouldUseColor(cobraCmd))
}

func versionTUI(_ context.Context, cobraCmd *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	info := version.Get()
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, components.RenderBanner(0))
	fmt.Fprintf(out, "%s %s\n", styles.HelpKeyStyle.Render("version:"), info.Version)
	fmt.Fprintf(out, "%s %s\n", styles.HelpKeyStyle.Render("commit: "), info.CommitHash)
	fmt.Fprintf(out, "%s %s\n", styles.HelpKeyStyle.Render("built:  "), info.BuildDate)
	if info.GoVersion != "" {
		fmt.Fprintf(out, "%s %s\n", styles.HelpKeyStyle.Render("go:     "), info.GoVersion)
	}
	return nil
}
