package components

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/engine/grid"
	"github.com/municrud/municrud/engine/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStaff struct {
	mu      sync.Mutex
	rows    []staff.Row
	updates []api.CellUpdate
	deletes []string
}

func (s *stubStaff) List(_ context.Context, params api.ListParams) (*api.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := (params.Page - 1) * params.PageSize
	out := []staff.Row{}
	for i := start; i < start+params.PageSize && i < len(s.rows); i++ {
		out = append(out, s.rows[i])
	}
	return &api.Page{Rows: out, TotalCount: len(s.rows)}, nil
}

func (s *stubStaff) FilterSort(ctx context.Context, params api.SortParams) (*api.Page, error) {
	return s.List(ctx, api.ListParams{PageSize: params.PageSize, Page: params.Page})
}

func (s *stubStaff) UpdateCell(_ context.Context, update api.CellUpdate) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	return "updated", nil
}

func (s *stubStaff) DeleteRow(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, identifier)
	return nil
}

func (s *stubStaff) PromoteRole(context.Context, string) (string, error) {
	return "promoted", nil
}

func (s *stubStaff) ListDepartments(context.Context) ([]staff.Department, error) {
	return []staff.Department{{Name: "Finanzas"}, {Name: "Obras"}}, nil
}

func newStubStaff(rows ...staff.Row) *stubStaff {
	return &stubStaff{rows: rows}
}

var ana = staff.Row{
	Identifier: "11.111.111-1",
	FirstNames: "Ana",
	LastNames:  "Rojas",
	Email:      "ana@muni.cl",
	Role:       staff.RoleUser,
	Department: "Finanzas",
	JobNumber:  "100",
	Extension:  "12",
}

func numberedRows(n int) []staff.Row {
	rows := make([]staff.Row, n)
	for i := range rows {
		rows[i] = ana
		rows[i].Identifier = fmt.Sprintf("%d.111.111-1", i+1)
		rows[i].FirstNames = fmt.Sprintf("Name%d", i+1)
	}
	return rows
}

func newTestGrid(t *testing.T, svc *stubStaff, role staff.Role, opts GridOptions) *StaffGrid {
	t.Helper()
	ctx := context.Background()
	ctrl, err := grid.NewController(ctx, svc, api.NewSession("token", role), grid.Options{})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	m := NewStaffGrid(ctx, ctrl, opts)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	drive(t, m, m.run(ctrl.Start))
	return m
}

// drive runs a command synchronously and feeds its result back
func drive(t *testing.T, m *StaffGrid, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if res, ok := msg.(opResultMsg); ok {
		m.Update(res)
	}
}

func press(t *testing.T, m *StaffGrid, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		drive(t, m, cmd)
	}
}

func TestStaffGrid_View(t *testing.T) {
	t.Run("Should render loaded rows with pagination", func(t *testing.T) {
		m := newTestGrid(t, newStubStaff(ana), staff.RoleAdmin, GridOptions{})
		view := m.View()
		assert.Contains(t, view, "Ana")
		assert.Contains(t, view, "11.111.111-1")
		assert.Contains(t, view, "page 1 of 1")
	})
	t.Run("Should show the empty state", func(t *testing.T) {
		m := newTestGrid(t, newStubStaff(), staff.RoleAdmin, GridOptions{})
		assert.Contains(t, m.View(), "No records")
	})
	t.Run("Should mark the sorted column", func(t *testing.T) {
		m := newTestGrid(t, newStubStaff(ana), staff.RoleAdmin, GridOptions{})
		press(t, m, "s")
		assert.Equal(t, api.SortAsc, m.snap.Sort.Direction)
		assert.Contains(t, m.View(), "RUT ▲")
	})
}

func TestStaffGrid_Editing(t *testing.T) {
	t.Run("Should ignore edit keys for user viewers", func(t *testing.T) {
		m := newTestGrid(t, newStubStaff(ana), staff.RoleUser, GridOptions{})
		press(t, m, "e")
		assert.False(t, m.snap.Editing.Has(0))
	})
	t.Run("Should commit a text cell on enter", func(t *testing.T) {
		svc := newStubStaff(ana)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "e")
		require.True(t, m.snap.Editing.Has(0))
		press(t, m, "l", "enter")
		require.Equal(t, modeCellInput, m.mode)
		press(t, m, "backspace", "backspace", "backspace", "L", "u", "z", "enter")
		require.Len(t, svc.updates, 1)
		assert.Equal(t, "Luz", svc.updates[0].Value)
		assert.Equal(t, staff.ColumnFirstNames, svc.updates[0].Column)
		assert.Equal(t, "11.111.111-1", svc.updates[0].Identifier)
		assert.Equal(t, modeBrowse, m.mode)
	})
	t.Run("Should not send a cell edit canceled with esc", func(t *testing.T) {
		svc := newStubStaff(ana)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "e", "l", "enter", "X", "esc")
		assert.Empty(t, svc.updates)
	})
	t.Run("Should pick a department from the option list", func(t *testing.T) {
		svc := newStubStaff(ana)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "e", "l", "l", "l", "l", "l", "enter")
		require.Equal(t, modeSelect, m.mode)
		assert.Equal(t, []string{"Obras"}, m.options)
		press(t, m, "enter")
		require.Len(t, svc.updates, 1)
		assert.Equal(t, "Obras", svc.updates[0].Value)
	})
}

func TestStaffGrid_Confirm(t *testing.T) {
	t.Run("Should delete only after confirmation", func(t *testing.T) {
		svc := newStubStaff(ana)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "d")
		require.Equal(t, modeConfirm, m.mode)
		assert.Contains(t, m.View(), "Delete Ana Rojas (11.111.111-1)?")
		press(t, m, "n")
		assert.Empty(t, svc.deletes)
		press(t, m, "d", "y")
		assert.Equal(t, []string{"11.111.111-1"}, svc.deletes)
	})
	t.Run("Should not delete another row when the page changes under the prompt", func(t *testing.T) {
		svc := newStubStaff(numberedRows(15)...)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "d")
		require.Equal(t, modeConfirm, m.mode)
		assert.Contains(t, m.View(), "(1.111.111-1)?")
		drive(t, m, m.run(m.ctrl.NextPage))
		require.Equal(t, 2, m.snap.Pagination.Page)
		press(t, m, "y")
		assert.Empty(t, svc.deletes)
		assert.Equal(t, statusError, m.statusKind)
		assert.Contains(t, m.status, grid.ErrRowGone.Error())
	})
}

func TestStaffGrid_CellTarget(t *testing.T) {
	t.Run("Should not write an open editor onto the row that replaced it", func(t *testing.T) {
		svc := newStubStaff(numberedRows(3)...)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "e", "l", "enter")
		require.Equal(t, modeCellInput, m.mode)
		svc.mu.Lock()
		svc.rows = svc.rows[1:]
		svc.mu.Unlock()
		drive(t, m, m.run(m.ctrl.Refresh))
		require.Equal(t, "2.111.111-1", m.snap.Rows[0].Identifier)
		press(t, m, "X", "enter")
		assert.Empty(t, svc.updates)
		assert.Contains(t, m.status, grid.ErrRowGone.Error())
	})
}

func TestStaffGrid_Refresh(t *testing.T) {
	t.Run("Should keep department options for rows in edit mode", func(t *testing.T) {
		svc := newStubStaff(ana)
		m := newTestGrid(t, svc, staff.RoleAdmin, GridOptions{})
		press(t, m, "e")
		require.True(t, m.snap.Editing.Has(0))
		press(t, m, "r")
		require.True(t, m.snap.Editing.Has(0))
		view, err := m.ctrl.Cell(0, staff.ColumnDepartment)
		require.NoError(t, err)
		assert.Equal(t, []string{"Obras"}, view.Options)
		press(t, m, "l", "l", "l", "l", "l", "enter")
		assert.Equal(t, modeSelect, m.mode)
	})
}

func TestStaffGrid_Clipboard(t *testing.T) {
	t.Run("Should copy the focused identifier", func(t *testing.T) {
		var copied string
		m := newTestGrid(t, newStubStaff(ana), staff.RoleUser, GridOptions{
			Clipboard: func(text string) error {
				copied = text
				return nil
			},
		})
		press(t, m, "y")
		assert.Equal(t, "11.111.111-1", copied)
		assert.Contains(t, m.status, "copied")
	})
}

func TestNextPageSize(t *testing.T) {
	t.Run("Should cycle through the allowed sizes", func(t *testing.T) {
		assert.Equal(t, 20, nextPageSize(10))
		assert.Equal(t, 10, nextPageSize(50))
		assert.Equal(t, 10, nextPageSize(7))
	})
}
