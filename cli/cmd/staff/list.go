package staff

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/components"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/grid"
	domain "github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type listQuery struct {
	page     int
	pageSize int
	search   grid.Search
	sort     grid.Sort
}

func parseListFlags(cobraCmd *cobra.Command, pageSize int) (*listQuery, error) {
	q := &listQuery{
		page:     helpers.GetFlagIntWithDefault(cobraCmd, "page", 1),
		pageSize: pageSize,
	}
	if q.page < 1 {
		return nil, helpers.NewCliError(helpers.CodeValidation, "page must be at least 1")
	}
	searchColumn := helpers.GetFlagStringWithDefault(cobraCmd, "search-column", "")
	searchValue := helpers.GetFlagStringWithDefault(cobraCmd, "search", "")
	sortColumn := helpers.GetFlagStringWithDefault(cobraCmd, "sort-column", "")
	order := helpers.GetFlagStringWithDefault(cobraCmd, "order", string(api.SortAsc))
	if searchValue != "" && sortColumn != "" {
		return nil, helpers.NewCliError(helpers.CodeValidation, "search and sort cannot be combined")
	}
	if searchValue != "" {
		if searchColumn == "" {
			return nil, helpers.NewCliError(helpers.CodeMissingArg, "--search-column is required with --search")
		}
		col, err := domain.ParseColumn(searchColumn)
		if err != nil {
			return nil, helpers.NewCliError(helpers.CodeValidation, err.Error())
		}
		q.search = grid.Search{Column: col, Value: searchValue}
	}
	if sortColumn != "" {
		col, err := domain.ParseColumn(sortColumn)
		if err != nil {
			return nil, helpers.NewCliError(helpers.CodeValidation, err.Error())
		}
		dir, err := api.ParseSortDirection(order)
		if err != nil {
			return nil, helpers.NewCliError(helpers.CodeValidation, err.Error())
		}
		q.sort = grid.Sort{Column: col, Direction: dir}
	}
	return q, nil
}

// fetchPage runs the query against the gateway the same way the grid does
func fetchPage(ctx context.Context, client api.StaffService, q *listQuery) (*api.Page, error) {
	if q.sort.Active() {
		return client.FilterSort(ctx, api.SortParams{
			Column:    q.sort.Column,
			Direction: q.sort.Direction,
			PageSize:  q.pageSize,
			Page:      q.page,
		})
	}
	return client.List(ctx, api.ListParams{
		SearchValue:  q.search.Value,
		SearchColumn: q.search.Column,
		PageSize:     q.pageSize,
		Page:         q.page,
	})
}

type listResponse struct {
	Rows       []domain.Row    `json:"rows"`
	Pagination grid.Pagination `json:"pagination"`
}

func runList(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor) (*listResponse, error) {
	q, err := parseListFlags(cobraCmd, executor.Config().Grid.PageSize)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("listing staff",
		"page", q.page,
		"page_size", q.pageSize,
		"search_column", q.search.Column,
		"sort_column", q.sort.Column,
	)
	page, err := fetchPage(ctx, executor.Client(), q)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return &listResponse{
		Rows:       page.Rows,
		Pagination: grid.Paginate(q.page, q.pageSize, page.TotalCount),
	}, nil
}

func listJSON(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	resp, err := runList(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	return helpers.WriteJSON(cobraCmd.OutOrStdout(), resp, helpers.ShouldUseColor(cobraCmd))
}

func listTUI(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	resp, err := runList(ctx, cobraCmd, executor)
	if err != nil {
		return err
	}
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), renderRows(resp, width))
	return nil
}

func renderRows(resp *listResponse, width int) string {
	if len(resp.Rows) == 0 {
		return styles.HelpStyle.Render("No records") + "\n" + components.RenderPagination(resp.Pagination)
	}
	columns := domain.Columns()
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.HeaderStyle
			}
			return styles.CellStyle
		})
	for _, row := range resp.Rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = helpers.Truncate(row.Get(c.ID), c.Width)
		}
		t.Row(cells...)
	}
	if width > 0 {
		t.Width(width)
	}
	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(components.RenderPagination(resp.Pagination))
	return b.String()
}
