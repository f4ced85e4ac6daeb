package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/engine/staff"
)

// fakeStaff serves an in-memory table with the backend's paging rules.
type fakeStaff struct {
	mu          sync.Mutex
	rows        []staff.Row
	lists       []api.ListParams
	sorts       []api.SortParams
	updates     []api.CellUpdate
	deletes     []string
	promotes    []string
	deptCalls   int
	departments []staff.Department
	updateErr   error
	listErr     error
	// listHook, when set, replaces the List response.
	listHook func(ctx context.Context, params api.ListParams) (*api.Page, error)
	// updateHook, when set, runs before an update is recorded.
	updateHook func(ctx context.Context, update api.CellUpdate)
}

var _ api.StaffService = (*fakeStaff)(nil)

func newFakeStaff(n int) *fakeStaff {
	rows := make([]staff.Row, n)
	for i := range rows {
		rows[i] = staff.Row{
			Identifier: fmt.Sprintf("%d.111.111-1", i+1),
			FirstNames: fmt.Sprintf("Name%d", i+1),
			LastNames:  "Soto",
			Email:      fmt.Sprintf("user%d@muni.cl", i+1),
			Role:       staff.RoleUser,
			Department: "Finanzas",
			Address:    "Calle 1",
			JobNumber:  "22 123",
			Extension:  "12",
		}
	}
	return &fakeStaff{
		rows:        rows,
		departments: []staff.Department{{Name: "Finanzas"}, {Name: "Obras"}, {Name: "Salud"}},
	}
}

func (f *fakeStaff) pageOf(pageSize, page int) *api.Page {
	start := (page - 1) * pageSize
	out := []staff.Row{}
	for i := start; i < start+pageSize && i < len(f.rows); i++ {
		out = append(out, f.rows[i])
	}
	return &api.Page{Rows: out, TotalCount: len(f.rows)}
}

func (f *fakeStaff) List(ctx context.Context, params api.ListParams) (*api.Page, error) {
	f.mu.Lock()
	f.lists = append(f.lists, params)
	hook, err := f.listHook, f.listErr
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, params)
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageOf(params.PageSize, params.Page), nil
}

func (f *fakeStaff) FilterSort(_ context.Context, params api.SortParams) (*api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sorts = append(f.sorts, params)
	return f.pageOf(params.PageSize, params.Page), nil
}

func (f *fakeStaff) UpdateCell(ctx context.Context, update api.CellUpdate) (string, error) {
	f.mu.Lock()
	hook := f.updateHook
	f.mu.Unlock()
	if hook != nil {
		hook(ctx, update)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	if f.updateErr != nil {
		return "", f.updateErr
	}
	for i := range f.rows {
		if f.rows[i].Identifier == update.Identifier {
			if err := f.rows[i].Set(update.Column, update.Value); err != nil {
				return "", err
			}
		}
	}
	return "Usuario actualizado", nil
}

func (f *fakeStaff) DeleteRow(_ context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, identifier)
	for i := range f.rows {
		if f.rows[i].Identifier == identifier {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStaff) PromoteRole(_ context.Context, identifier string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promotes = append(f.promotes, identifier)
	for i := range f.rows {
		if f.rows[i].Identifier == identifier {
			if f.rows[i].Role == staff.RoleUser {
				f.rows[i].Role = staff.RoleAdmin
			} else {
				f.rows[i].Role = staff.RoleUser
			}
		}
	}
	return "Rol actualizado", nil
}

func (f *fakeStaff) ListDepartments(_ context.Context) ([]staff.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deptCalls++
	return f.departments, nil
}

func (f *fakeStaff) counts() (lists, sorts, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists), len(f.sorts), len(f.updates), len(f.deletes)
}

func (f *fakeStaff) lastList() api.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[len(f.lists)-1]
}
