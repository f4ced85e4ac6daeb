package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/pkg/config"
	"github.com/spf13/cobra"
)

var ciVars = []string{
	"CI",
	"JENKINS_URL",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"BUILDKITE",
	"TF_BUILD",
	"BUILD_NUMBER",
	"CONTINUOUS_INTEGRATION",
}

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// explicitMode reads cli.default_format; "auto" defers to detection
func explicitMode(cfg *config.Config) (models.Mode, bool) {
	switch OutputFormat(cfg.CLI.DefaultFormat) {
	case OutputFormatJSON:
		return models.ModeJSON, true
	case OutputFormatTUI:
		return models.ModeTUI, true
	default:
		return models.ModeJSON, false
	}
}

// isInteractiveEnvironment checks if we're in an interactive environment
func isInteractiveEnvironment(cfg *config.Config) bool {
	if cfg.CLI.Interactive {
		return true
	}
	if isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdin.Fd()) || !isTerminal(os.Stdout.Fd()) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

func configFromCommand(cmd *cobra.Command) *config.Config {
	if cmd.Context() == nil {
		return nil
	}
	cfg, ok := cmd.Context().Value(ConfigKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// DetectMode picks JSON or TUI output from configuration and the terminal
func DetectMode(cmd *cobra.Command) models.Mode {
	cfg := configFromCommand(cmd)
	if cfg == nil {
		return models.ModeJSON
	}
	if mode, found := explicitMode(cfg); found {
		return mode
	}
	if isInteractiveEnvironment(cfg) {
		return models.ModeTUI
	}
	return models.ModeJSON
}

// ShouldUseColor determines if colored output should be used
func ShouldUseColor(cmd *cobra.Command) bool {
	if cfg := configFromCommand(cmd); cfg != nil && cfg.CLI.NoColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdout.Fd()) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
