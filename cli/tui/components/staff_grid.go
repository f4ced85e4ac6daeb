package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/grid"
	"github.com/municrud/municrud/engine/staff"
)

type gridMode int

const (
	modeBrowse gridMode = iota
	modeCellInput
	modeSelect
	modeSearch
	modeJump
	modeConfirm
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// GridOptions configures optional grid features
type GridOptions struct {
	// Exporter writes the visible rows to a local workbook and returns its path.
	Exporter func(rows []staff.Row) (string, error)
	// Greeting is shown next to the title, e.g. the viewer's name.
	Greeting string
	// Clipboard replaces the system clipboard, mainly for tests.
	Clipboard func(text string) error
}

type gridEventMsg struct {
	event grid.Event
	ok    bool
}

type opResultMsg struct {
	err  error
	note string
	snap grid.Snapshot
}

type pendingConfirm struct {
	prompt string
	answer func(ok bool) tea.Cmd
}

// cellTarget is the cell an open editor writes to
type cellTarget struct {
	index      int
	identifier string
	column     staff.ColumnID
}

// StaffGrid is the interactive staff table. Every backend call goes through
// the grid controller inside a tea.Cmd so the UI loop never blocks.
type StaffGrid struct {
	models.BaseModel
	ctrl    *grid.Controller
	opts    GridOptions
	keys    GridKeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	snap      grid.Snapshot
	columns   []staff.Column
	row       int
	col       int
	mode      gridMode
	options   []string
	optionIdx int
	pending   *pendingConfirm
	target    cellTarget

	status     string
	statusKind statusKind
	busy       bool
}

// NewStaffGrid creates the grid model around a controller
func NewStaffGrid(ctx context.Context, ctrl *grid.Controller, opts GridOptions) *StaffGrid {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	in := textinput.New()
	in.Prompt = "› "

	keys := DefaultGridKeyMap()
	viewer := ctrl.Session().Role()
	switch {
	case !viewer.CanEdit():
		keys = keys.readOnly()
	case !viewer.CanChangeRoles():
		keys = keys.withoutPromote()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Exporter == nil {
		keys.Export.SetEnabled(false)
	}
	return &StaffGrid{
		BaseModel: models.NewBaseModel(ctx),
		ctrl:      ctrl,
		opts:      opts,
		keys:      keys,
		help:      help.New(),
		spinner:   s,
		input:     in,
		snap:      ctrl.Snapshot(),
		columns:   staff.Columns(),
		busy:      true,
	}
}

func (m *StaffGrid) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForEvent(),
		m.run(m.ctrl.Start),
	)
}

func (m *StaffGrid) waitForEvent() tea.Cmd {
	events := m.ctrl.Events()
	return func() tea.Msg {
		ev, ok := <-events
		return gridEventMsg{event: ev, ok: ok}
	}
}

// run executes a controller call off the UI loop
func (m *StaffGrid) run(fn func(context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.Context()
	return func() tea.Msg {
		err := fn(ctx)
		return opResultMsg{err: err, snap: m.ctrl.Snapshot()}
	}
}

func (m *StaffGrid) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := m.BaseModel.Update(msg); cmd != nil {
		return m, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case gridEventMsg:
		if !msg.ok {
			return m, nil
		}
		m.handleEvent(msg.event)
		return m, m.waitForEvent()
	case opResultMsg:
		m.busy = false
		m.applySnapshot(msg.snap)
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
		} else if msg.note != "" {
			m.setStatus(statusInfo, msg.note)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *StaffGrid) handleEvent(ev grid.Event) {
	switch ev.Kind {
	case grid.EventFetched:
		m.applySnapshot(ev.Snapshot)
	case grid.EventFailed:
		m.setStatus(statusError, ev.Message)
	case grid.EventNotice:
		m.setStatus(statusSuccess, ev.Message)
	}
}

func (m *StaffGrid) applySnapshot(snap grid.Snapshot) {
	if !snap.Loaded && m.snap.Loaded {
		return
	}
	m.snap = snap
	if m.row >= len(snap.Rows) {
		m.row = max(0, len(snap.Rows)-1)
	}
}

func (m *StaffGrid) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *StaffGrid) currentColumn() staff.Column {
	return m.columns[m.col]
}

func (m *StaffGrid) currentRow() (staff.Row, bool) {
	if m.row < 0 || m.row >= len(m.snap.Rows) {
		return staff.Row{}, false
	}
	return m.snap.Rows[m.row], true
}

func (m *StaffGrid) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCellInput:
		return m.handleCellInput(msg)
	case modeSelect:
		return m.handleSelect(msg)
	case modeSearch:
		return m.handleSearch(msg)
	case modeJump:
		return m.handleJump(msg)
	case modeConfirm:
		return m.handleConfirm(msg)
	default:
		return m.handleBrowse(msg)
	}
}

func (m *StaffGrid) handleBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.Quit()
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		m.row = max(0, m.row-1)
	case key.Matches(msg, k.Down):
		m.row = min(max(0, len(m.snap.Rows)-1), m.row+1)
	case key.Matches(msg, k.Left):
		m.col = max(0, m.col-1)
	case key.Matches(msg, k.Right):
		m.col = min(len(m.columns)-1, m.col+1)
	case key.Matches(msg, k.NextPage):
		return m, m.run(m.ctrl.NextPage)
	case key.Matches(msg, k.PrevPage):
		return m, m.run(m.ctrl.PrevPage)
	case key.Matches(msg, k.FirstPage):
		return m, m.run(m.ctrl.FirstPage)
	case key.Matches(msg, k.LastPage):
		return m, m.run(m.ctrl.LastPage)
	case key.Matches(msg, k.JumpPage):
		m.openInput(modeJump, "page: ", "", 4)
	case key.Matches(msg, k.PageSize):
		next := nextPageSize(m.snap.Pagination.PageSize)
		return m, m.run(func(ctx context.Context) error { return m.ctrl.SetPageSize(ctx, next) })
	case key.Matches(msg, k.Sort):
		column := m.currentColumn().ID
		return m, m.run(func(ctx context.Context) error { return m.ctrl.ToggleSort(ctx, column) })
	case key.Matches(msg, k.Search):
		value := ""
		if m.snap.Search.Column == m.currentColumn().ID {
			value = m.snap.Search.Value
		}
		m.openInput(modeSearch, m.currentColumn().Title+": ", value, 0)
	case key.Matches(msg, k.Refresh):
		return m, m.run(func(ctx context.Context) error {
			deptErr := m.ctrl.ReloadDepartments(ctx)
			if err := m.ctrl.Refresh(ctx); err != nil {
				return err
			}
			return deptErr
		})
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Copy):
		m.copyIdentifier()
	case key.Matches(msg, k.Export):
		m.exportPage()
	default:
		return m.handleRowAction(msg)
	}
	return m, nil
}

func (m *StaffGrid) handleRowAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	index, identifier := m.row, row.Identifier
	switch {
	case key.Matches(msg, k.Edit):
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.ToggleEdit(ctx, index)
			return err
		})
	case key.Matches(msg, k.EditCell):
		return m, m.beginCellEdit()
	case key.Matches(msg, k.Accept):
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Revert(ctx, index, false) })
	case key.Matches(msg, k.Cancel):
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Revert(ctx, index, true) })
	case key.Matches(msg, k.Delete):
		m.askConfirm(fmt.Sprintf("Delete %s (%s)?", row.FullName(), row.Identifier), func(ok bool) tea.Cmd {
			return m.run(func(ctx context.Context) error {
				_, err := m.ctrl.DeleteRow(ctx, index, identifier, answer(ok))
				return err
			})
		})
	case key.Matches(msg, k.Promote):
		if row.Role == staff.RoleSuperAdmin {
			m.setStatus(statusError, grid.ErrPromoteSuperAdmin.Error())
			return m, nil
		}
		m.askConfirm(grid.PromotePrompt(row), func(ok bool) tea.Cmd {
			return m.run(func(ctx context.Context) error {
				_, err := m.ctrl.PromoteRole(ctx, index, identifier, answer(ok))
				return err
			})
		})
	}
	return m, nil
}

// answer is a ConfirmFunc for a decision the grid already collected
func answer(ok bool) grid.ConfirmFunc {
	return func(context.Context, string) (bool, error) { return ok, nil }
}

func (m *StaffGrid) askConfirm(prompt string, fn func(ok bool) tea.Cmd) {
	m.pending = &pendingConfirm{prompt: prompt, answer: fn}
	m.mode = modeConfirm
}

func (m *StaffGrid) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		return m.resolveConfirm(true)
	case "n", "esc", "q":
		return m.resolveConfirm(false)
	}
	return m, nil
}

func (m *StaffGrid) resolveConfirm(ok bool) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.pending = nil
	m.mode = modeBrowse
	if pending == nil {
		return m, nil
	}
	return m, pending.answer(ok)
}

func (m *StaffGrid) openInput(mode gridMode, prompt, value string, limit int) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.CharLimit = limit
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *StaffGrid) closeInput() {
	m.input.Blur()
	m.input.Reset()
	m.mode = modeBrowse
}

func (m *StaffGrid) beginCellEdit() tea.Cmd {
	column := m.currentColumn()
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	view, err := m.ctrl.Cell(m.row, column.ID)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return nil
	}
	if !view.Interactive() {
		if !m.snap.Editing.Has(m.row) {
			m.setStatus(statusInfo, "press e to edit this row first")
		} else {
			m.setStatus(statusInfo, column.Title+" is read-only")
		}
		return nil
	}
	if view.Kind == grid.CellSelect {
		if len(view.Options) == 0 {
			m.setStatus(statusInfo, "no other values to choose from")
			return nil
		}
		m.target = cellTarget{index: m.row, identifier: row.Identifier, column: column.ID}
		m.options = view.Options
		m.optionIdx = 0
		m.mode = modeSelect
		return nil
	}
	m.target = cellTarget{index: m.row, identifier: row.Identifier, column: column.ID}
	m.openInput(modeCellInput, column.Title+": ", view.Value, view.MaxLen)
	return textinput.Blink
}

func (m *StaffGrid) commit(value string) tea.Cmd {
	target := m.target
	return m.run(func(ctx context.Context) error {
		_, err := m.ctrl.CommitCell(ctx, target.index, target.identifier, target.column, value)
		return err
	})
}

func (m *StaffGrid) handleCellInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter, tea.KeyTab:
		value := m.input.Value()
		m.closeInput()
		return m, m.commit(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *StaffGrid) handleSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Up):
		m.optionIdx = max(0, m.optionIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.optionIdx = min(len(m.options)-1, m.optionIdx+1)
	case msg.Type == tea.KeyEnter:
		value := m.options[m.optionIdx]
		m.mode = modeBrowse
		m.options = nil
		return m, m.commit(value)
	}
	return m, nil
}

func (m *StaffGrid) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.closeInput()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.ctrl.SetSearch(m.currentColumn().ID, value)
	}
	return m, cmd
}

func (m *StaffGrid) handleJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		input := m.input.Value()
		m.closeInput()
		ctx := m.Context()
		m.busy = true
		return m, func() tea.Msg {
			ok, err := m.ctrl.JumpToPage(ctx, input)
			res := opResultMsg{err: err, snap: m.ctrl.Snapshot()}
			if !ok && err == nil {
				res.note = fmt.Sprintf("%q is not a page number", input)
			}
			return res
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *StaffGrid) copyIdentifier() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	if err := m.opts.Clipboard(row.Identifier); err != nil {
		m.setStatus(statusError, "clipboard unavailable: "+err.Error())
		return
	}
	m.setStatus(statusSuccess, "copied "+row.Identifier)
}

func (m *StaffGrid) exportPage() {
	if m.opts.Exporter == nil {
		return
	}
	path, err := m.opts.Exporter(m.snap.Rows)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	m.setStatus(statusSuccess, fmt.Sprintf("exported %d %s to %s",
		len(m.snap.Rows), helpers.Pluralize(len(m.snap.Rows), "row", "rows"), path))
}

func nextPageSize(current int) int {
	for i, size := range api.PageSizes {
		if size == current {
			return api.PageSizes[(i+1)%len(api.PageSizes)]
		}
	}
	return api.PageSizes[0]
}

func (m *StaffGrid) View() string {
	if m.IsQuitting() {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	switch {
	case !m.snap.Loaded && m.busy:
		b.WriteString(fmt.Sprintf("%s Loading staff...", m.spinner.View()))
	case m.snap.Empty():
		b.WriteString(styles.HelpStyle.Render("No records"))
	default:
		b.WriteString(m.renderTable())
	}
	b.WriteString("\n")
	b.WriteString(RenderPagination(m.snap.Pagination))
	if line := m.renderModeLine(); line != "" {
		b.WriteString("\n\n" + line)
	}
	if m.status != "" {
		b.WriteString("\n" + m.renderStatus())
	}
	b.WriteString("\n\n" + m.help.View(m.keys))
	return b.String()
}

func (m *StaffGrid) renderHeader() string {
	title := styles.RenderTitle("Municipal staff")
	parts := []string{title}
	if m.opts.Greeting != "" {
		parts = append(parts, styles.HelpStyle.Render(m.opts.Greeting))
	}
	parts = append(parts, styles.InfoStyle.Render("["+string(m.snap.Viewer)+"]"))
	if m.snap.Sort.Active() {
		parts = append(parts, styles.HelpStyle.Render(fmt.Sprintf("sort: %s %s", m.snap.Sort.Column, m.snap.Sort.Direction)))
	}
	if m.snap.Search.Active() {
		parts = append(parts, styles.WarningStyle.Render(fmt.Sprintf("search: %s=%q", m.snap.Search.Column, m.snap.Search.Value)))
	}
	if m.busy {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, "  ")
}

func (m *StaffGrid) renderTable() string {
	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		headers[i] = c.Title + sortMarker(m.snap.Sort, c.ID)
	}
	rows := make([][]string, len(m.snap.Rows))
	for r, row := range m.snap.Rows {
		cells := make([]string, len(m.columns))
		for i, c := range m.columns {
			value := row.Get(c.ID)
			if i == 0 && m.snap.Editing.Has(r) {
				value = "✎ " + value
			}
			cells[i] = helpers.Truncate(value, c.Width)
		}
		rows[r] = cells
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.HeaderStyle
			case row == m.row && col == m.col && m.snap.Editing.Has(row):
				return styles.FocusedCellStyle
			case m.snap.Editing.Has(row):
				return styles.EditingCellStyle
			case row == m.row:
				return styles.SelectedRowStyle.Padding(0, 1)
			default:
				return styles.CellStyle
			}
		})
	if w, _ := m.Size(); w > 0 {
		t = t.Width(w)
	}
	return t.Render()
}

func sortMarker(s grid.Sort, column staff.ColumnID) string {
	if s.Column != column {
		return ""
	}
	switch s.Direction {
	case api.SortAsc:
		return " ▲"
	case api.SortDesc:
		return " ▼"
	default:
		return " •"
	}
}

func (m *StaffGrid) renderModeLine() string {
	switch m.mode {
	case modeCellInput, modeSearch, modeJump:
		return m.input.View()
	case modeSelect:
		var b strings.Builder
		b.WriteString(styles.HelpStyle.Render(m.currentColumn().Title + " (enter to apply, esc to cancel)"))
		for i, opt := range m.options {
			b.WriteString("\n")
			if i == m.optionIdx {
				b.WriteString(styles.SelectedRowStyle.Render("> " + opt))
			} else {
				b.WriteString("  " + opt)
			}
		}
		return b.String()
	case modeConfirm:
		if m.pending == nil {
			return ""
		}
		return styles.DialogStyle.Render(m.pending.prompt + "\n\n" + styles.HelpStyle.Render("y: yes  n: no"))
	}
	return ""
}

func (m *StaffGrid) renderStatus() string {
	switch m.statusKind {
	case statusError:
		return styles.ErrorStyle.Render("✗ " + m.status)
	case statusSuccess:
		return styles.SuccessStyle.Render("✓ " + m.status)
	default:
		return styles.InfoStyle.Render(m.status)
	}
}

// RenderPagination renders the footer; disabled controls are dimmed.
func RenderPagination(p grid.Pagination) string {
	control := func(label string, enabled bool) string {
		if enabled {
			return styles.HelpKeyStyle.Render(label)
		}
		return styles.DisabledStyle.Render(label)
	}
	return styles.PaginationStyle.Render(fmt.Sprintf("%s %s  page %d of %d  %s %s   %d %s · %d per page",
		control("«", p.CanFirst),
		control("‹", p.CanPrev),
		p.Page, p.TotalPages,
		control("›", p.CanNext),
		control("»", p.CanLast),
		p.TotalCount, helpers.Pluralize(p.TotalCount, "record", "records"),
		p.PageSize,
	))
}
