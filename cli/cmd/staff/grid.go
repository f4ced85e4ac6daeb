package staff

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosimple/slug"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/components"
	"github.com/municrud/municrud/engine/grid"
	"github.com/municrud/municrud/engine/spreadsheet"
	domain "github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

func gridJSON(_ context.Context, _ *cobra.Command, _ *cmd.CommandExecutor, _ []string) error {
	return helpers.NewCliError(
		helpers.CodeValidation,
		"the staff grid needs an interactive terminal",
		"use 'staff list' for machine-readable output, or pass --format tui",
	)
}

func gridTUI(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	session := executor.Session()
	ctrl, err := grid.NewController(ctx, executor.Client(), session, executor.GridOptions())
	if err != nil {
		return fmt.Errorf("failed to create grid: %w", err)
	}
	defer ctrl.Close()
	store := executor.DownloadStore()
	opts := components.GridOptions{
		Exporter: func(rows []domain.Row) (string, error) {
			data, err := spreadsheet.WriteRows(rows)
			if err != nil {
				return "", err
			}
			return store.Save(exportFileName(ctrl.Snapshot()), data)
		},
	}
	if name := session.Name(); name != "" {
		opts.Greeting = "Hello, " + name
	}
	log.Debug("starting staff grid", "role", session.Role())
	model := components.NewStaffGrid(ctx, ctrl, opts)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run grid: %w", err)
	}
	return nil
}

// exportFileName names a page export after the query that produced it,
// e.g. staff-apellidos-rojas-page-2.xlsx
func exportFileName(snap grid.Snapshot) string {
	parts := []string{"staff"}
	switch {
	case snap.Search.Active():
		parts = append(parts, slug.Make(string(snap.Search.Column)+" "+snap.Search.Value))
	case snap.Sort.Active():
		parts = append(parts, slug.Make(string(snap.Sort.Column)+" "+string(snap.Sort.Direction)))
	}
	parts = append(parts, fmt.Sprintf("page-%d", snap.Pagination.Page))
	return strings.Join(parts, "-") + ".xlsx"
}
