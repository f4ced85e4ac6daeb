package grid

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/engine/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, svc *fakeStaff, role staff.Role) *Controller {
	t.Helper()
	ctrl, err := NewController(context.Background(), svc, api.NewSession("token", role), Options{
		SearchDebounce: 40 * time.Millisecond,
		EventBuffer:    256,
	})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return ctrl
}

func startedController(t *testing.T, svc *fakeStaff, role staff.Role) *Controller {
	t.Helper()
	ctrl := newTestController(t, svc, role)
	require.NoError(t, ctrl.Start(context.Background()))
	return ctrl
}

func confirmWith(answer bool, prompts *[]string) ConfirmFunc {
	return func(_ context.Context, prompt string) (bool, error) {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return answer, nil
	}
}

func TestController_Fetch(t *testing.T) {
	t.Run("Should load the first page on start", func(t *testing.T) {
		svc := newFakeStaff(25)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		snap := ctrl.Snapshot()
		assert.Len(t, snap.Rows, 10)
		assert.Equal(t, snap.Rows, snap.PristineRows)
		assert.Equal(t, 1, snap.Pagination.Page)
		assert.Equal(t, 25, snap.Pagination.TotalCount)
		assert.Equal(t, PhaseIdle, snap.Phase)
		ev := <-ctrl.Events()
		assert.Equal(t, EventFetched, ev.Kind)
	})
	t.Run("Should yield five rows on page 3 of 25", func(t *testing.T) {
		svc := newFakeStaff(25)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		require.NoError(t, ctrl.SetPage(context.Background(), 3))
		snap := ctrl.Snapshot()
		assert.Len(t, snap.Rows, 5)
		assert.True(t, snap.Pagination.CanPrev)
		assert.False(t, snap.Pagination.CanNext)
	})
	t.Run("Should report the empty state", func(t *testing.T) {
		ctrl := startedController(t, newFakeStaff(0), staff.RoleAdmin)
		assert.True(t, ctrl.Snapshot().Empty())
	})
	t.Run("Should keep prior state when a fetch fails", func(t *testing.T) {
		svc := newFakeStaff(15)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		svc.mu.Lock()
		svc.listErr = errors.New("connection refused")
		svc.mu.Unlock()
		err := ctrl.NextPage(context.Background())
		require.Error(t, err)
		snap := ctrl.Snapshot()
		assert.Len(t, snap.Rows, 10)
		assert.Equal(t, "1.111.111-1", snap.Rows[0].Identifier)
	})
	t.Run("Should drop a response that was overtaken", func(t *testing.T) {
		svc := newFakeStaff(30)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		slowStarted := make(chan struct{})
		releaseSlow := make(chan struct{})
		var once sync.Once
		svc.mu.Lock()
		svc.listHook = func(_ context.Context, params api.ListParams) (*api.Page, error) {
			if params.Page == 2 {
				once.Do(func() { close(slowStarted) })
				<-releaseSlow
			}
			svc.mu.Lock()
			defer svc.mu.Unlock()
			return svc.pageOf(params.PageSize, params.Page), nil
		}
		svc.mu.Unlock()

		done := make(chan error, 1)
		go func() { done <- ctrl.SetPage(context.Background(), 2) }()
		<-slowStarted
		require.NoError(t, ctrl.SetPage(context.Background(), 3))
		close(releaseSlow)
		require.NoError(t, <-done)

		snap := ctrl.Snapshot()
		assert.Equal(t, 3, snap.Pagination.Page)
		assert.Equal(t, "21.111.111-1", snap.Rows[0].Identifier)
	})
}

func TestController_Navigation(t *testing.T) {
	t.Run("Should not fetch when a footer control is disabled", func(t *testing.T) {
		svc := newFakeStaff(5)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		require.NoError(t, ctrl.PrevPage(context.Background()))
		require.NoError(t, ctrl.NextPage(context.Background()))
		lists, _, _, _ := svc.counts()
		assert.Equal(t, 1, lists)
	})
	t.Run("Should ignore a non-numeric page jump", func(t *testing.T) {
		svc := newFakeStaff(45)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		ok, err := ctrl.JumpToPage(context.Background(), "x")
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = ctrl.JumpToPage(context.Background(), "40")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 5, ctrl.Snapshot().Pagination.Page)
		lists, _, _, _ := svc.counts()
		assert.Equal(t, 2, lists)
	})
	t.Run("Should reset to page 1 when the page size changes", func(t *testing.T) {
		svc := newFakeStaff(45)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		require.NoError(t, ctrl.SetPage(context.Background(), 3))
		require.NoError(t, ctrl.SetPageSize(context.Background(), 20))
		snap := ctrl.Snapshot()
		assert.Equal(t, 1, snap.Pagination.Page)
		assert.Equal(t, 20, snap.Pagination.PageSize)
		assert.Len(t, snap.Rows, 20)
		assert.ErrorIs(t, ctrl.SetPageSize(context.Background(), 15), ErrInvalidPageSize)
	})
}

func TestController_SortAndSearch(t *testing.T) {
	t.Run("Should cycle sort requests back to the first one", func(t *testing.T) {
		svc := newFakeStaff(12)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		for range 4 {
			require.NoError(t, ctrl.ToggleSort(context.Background(), staff.ColumnLastNames))
		}
		svc.mu.Lock()
		defer svc.mu.Unlock()
		require.Len(t, svc.sorts, 4)
		assert.Equal(t, svc.sorts[0], svc.sorts[3])
		assert.Equal(t, api.SortDesc, svc.sorts[1].Direction)
		assert.Equal(t, api.SortNormal, svc.sorts[2].Direction)
	})
	t.Run("Should send one search after a burst of keystrokes", func(t *testing.T) {
		svc := newFakeStaff(12)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		for _, v := range []string{"s", "so", "sot", "soto", "soto "} {
			ctrl.SetSearch(staff.ColumnLastNames, v)
			time.Sleep(5 * time.Millisecond)
		}
		require.Eventually(t, func() bool {
			lists, _, _, _ := svc.counts()
			return lists == 2
		}, time.Second, 10*time.Millisecond)
		time.Sleep(120 * time.Millisecond)
		lists, _, _, _ := svc.counts()
		assert.Equal(t, 2, lists)
		last := svc.lastList()
		assert.Equal(t, "soto ", last.SearchValue)
		assert.Equal(t, staff.ColumnLastNames, last.SearchColumn)
	})
	t.Run("Should clear the search when sorting and the sort when searching", func(t *testing.T) {
		svc := newFakeStaff(12)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		ctrl.SetSearch(staff.ColumnEmail, "user1")
		require.Eventually(t, func() bool { return ctrl.Snapshot().Search.Active() }, time.Second, 10*time.Millisecond)
		require.NoError(t, ctrl.ToggleSort(context.Background(), staff.ColumnEmail))
		snap := ctrl.Snapshot()
		assert.False(t, snap.Search.Active())
		assert.True(t, snap.Sort.Active())

		ctrl.SetSearch(staff.ColumnEmail, "user2")
		require.Eventually(t, func() bool { return !ctrl.Snapshot().Sort.Active() }, time.Second, 10*time.Millisecond)
	})
	t.Run("Should drop a pending search on close", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		ctrl.SetSearch(staff.ColumnEmail, "late")
		ctrl.Close()
		time.Sleep(100 * time.Millisecond)
		lists, _, _, _ := svc.counts()
		assert.Equal(t, 1, lists)
	})
}

func TestController_Edit(t *testing.T) {
	t.Run("Should restore the fetched row on revert", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, err := ctrl.ToggleEdit(context.Background(), 1)
		require.NoError(t, err)
		require.NoError(t, ctrl.EditCell(1, staff.ColumnFirstNames, "Draft"))
		assert.Equal(t, "Draft", ctrl.Snapshot().Rows[1].FirstNames)
		require.NoError(t, ctrl.Revert(context.Background(), 1, true))
		snap := ctrl.Snapshot()
		assert.Equal(t, "Name2", snap.Rows[1].FirstNames)
		assert.False(t, snap.Editing.Has(1))
	})
	t.Run("Should load departments once when entering edit mode", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		for i := range 3 {
			_, err := ctrl.ToggleEdit(context.Background(), i)
			require.NoError(t, err)
		}
		view, err := ctrl.Cell(0, staff.ColumnDepartment)
		require.NoError(t, err)
		assert.Equal(t, []string{"Obras", "Salud"}, view.Options)
		svc.mu.Lock()
		assert.Equal(t, 1, svc.deptCalls)
		svc.mu.Unlock()
		require.NoError(t, ctrl.ReloadDepartments(context.Background()))
		_, _ = ctrl.ToggleEdit(context.Background(), 0)
		_, _ = ctrl.ToggleEdit(context.Background(), 0)
		svc.mu.Lock()
		assert.Equal(t, 2, svc.deptCalls)
		svc.mu.Unlock()
	})
	t.Run("Should refuse edit mode for a user viewer", func(t *testing.T) {
		ctrl := startedController(t, newFakeStaff(3), staff.RoleUser)
		_, err := ctrl.ToggleEdit(context.Background(), 0)
		assert.ErrorIs(t, err, ErrReadOnly)
	})
}

func TestController_CommitCell(t *testing.T) {
	t.Run("Should skip a value equal to the pristine copy", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, _ = ctrl.ToggleEdit(context.Background(), 0)
		sent, err := ctrl.CommitCell(context.Background(), 0, "1.111.111-1", staff.ColumnEmail, "user1@muni.cl")
		require.NoError(t, err)
		assert.False(t, sent)
		_, _, updates, _ := svc.counts()
		assert.Zero(t, updates)
	})
	t.Run("Should send the pristine identifier and refresh", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleSuperAdmin)
		_, _ = ctrl.ToggleEdit(context.Background(), 2)
		sent, err := ctrl.CommitCell(context.Background(), 2, "3.111.111-1", staff.ColumnRole, "admin")
		require.NoError(t, err)
		assert.True(t, sent)
		svc.mu.Lock()
		require.Len(t, svc.updates, 1)
		assert.Equal(t, api.CellUpdate{
			Identifier: "3.111.111-1",
			Column:     staff.ColumnRole,
			Value:      "admin",
			ViewerRole: staff.RoleSuperAdmin,
			PageSize:   10,
			Page:       1,
		}, svc.updates[0])
		svc.mu.Unlock()
		snap := ctrl.Snapshot()
		assert.Equal(t, staff.RoleAdmin, snap.PristineRows[2].Role)
		assert.True(t, snap.Editing.Has(2))
	})
	t.Run("Should refresh after a rejected update", func(t *testing.T) {
		svc := newFakeStaff(3)
		svc.updateErr = &api.APIError{Operation: "update cell", StatusCode: 403, Message: "no autorizado"}
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, _ = ctrl.ToggleEdit(context.Background(), 0)
		_, err := ctrl.CommitCell(context.Background(), 0, "1.111.111-1", staff.ColumnAddress, "Calle 2")
		require.Error(t, err)
		assert.ErrorIs(t, err, api.ErrForbidden)
		lists, _, _, _ := svc.counts()
		assert.Equal(t, 2, lists)
		assert.Equal(t, "Calle 1", ctrl.Snapshot().Rows[0].Address)
	})
	t.Run("Should reject invalid and forbidden edits before sending", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, _ = ctrl.ToggleEdit(context.Background(), 0)
		_, err := ctrl.CommitCell(context.Background(), 0, "1.111.111-1", staff.ColumnExtension, "12345")
		assert.ErrorIs(t, err, staff.ErrInvalid)
		_, err = ctrl.CommitCell(context.Background(), 0, "1.111.111-1", staff.ColumnRole, "superAdmin")
		assert.ErrorIs(t, err, ErrForbiddenColumn)
		_, err = ctrl.CommitCell(context.Background(), 0, "1.111.111-1", staff.ColumnIdentifier, "9-9")
		assert.ErrorIs(t, err, staff.ErrImmutableIdentifier)
		_, err = ctrl.CommitCell(context.Background(), 1, "2.111.111-1", staff.ColumnAddress, "Calle 9")
		assert.ErrorIs(t, err, ErrNotEditing)
		_, _, updates, _ := svc.counts()
		assert.Zero(t, updates)
	})
}

func TestController_DeleteAndPromote(t *testing.T) {
	t.Run("Should not delete without confirmation", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		before := ctrl.Snapshot().Rows
		deleted, err := ctrl.DeleteRow(context.Background(), 1, "2.111.111-1", confirmWith(false, nil))
		require.NoError(t, err)
		assert.False(t, deleted)
		lists, _, _, deletes := svc.counts()
		assert.Zero(t, deletes)
		assert.Equal(t, 2, lists)
		assert.Equal(t, before, ctrl.Snapshot().Rows)
	})
	t.Run("Should delete a confirmed row", func(t *testing.T) {
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		var prompts []string
		deleted, err := ctrl.DeleteRow(context.Background(), 1, "2.111.111-1", confirmWith(true, &prompts))
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, []string{"Delete Name2 Soto (2.111.111-1)?"}, prompts)
		assert.Len(t, ctrl.Snapshot().Rows, 2)
	})
	t.Run("Should word the promote prompt by current role", func(t *testing.T) {
		svc := newFakeStaff(2)
		svc.rows[1].Role = staff.RoleAdmin
		ctrl := startedController(t, svc, staff.RoleSuperAdmin)
		var prompts []string
		_, err := ctrl.PromoteRole(context.Background(), 0, "1.111.111-1", confirmWith(true, &prompts))
		require.NoError(t, err)
		_, err = ctrl.PromoteRole(context.Background(), 1, "2.111.111-1", confirmWith(false, &prompts))
		require.NoError(t, err)
		assert.Equal(t, []string{"Make Name1 Soto an admin?", "Remove admin rights from Name2 Soto?"}, prompts)
		assert.Equal(t, staff.RoleAdmin, ctrl.Snapshot().Rows[0].Role)
		svc.mu.Lock()
		assert.Equal(t, []string{"1.111.111-1"}, svc.promotes)
		svc.mu.Unlock()
	})
	t.Run("Should reject promoting a superAdmin and non-superAdmin viewers", func(t *testing.T) {
		svc := newFakeStaff(1)
		svc.rows[0].Role = staff.RoleSuperAdmin
		ctrl := startedController(t, svc, staff.RoleSuperAdmin)
		_, err := ctrl.PromoteRole(context.Background(), 0, "1.111.111-1", confirmWith(true, nil))
		assert.ErrorIs(t, err, ErrPromoteSuperAdmin)

		admin := startedController(t, newFakeStaff(1), staff.RoleAdmin)
		_, err = admin.PromoteRole(context.Background(), 0, "1.111.111-1", confirmWith(true, nil))
		assert.ErrorIs(t, err, ErrForbiddenColumn)
	})
}

func TestController_Serialization(t *testing.T) {
	t.Run("Should run overlapping commits one after the other", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(3)
		started := make(chan struct{}, 2)
		release := make(chan struct{})
		svc.updateHook = func(context.Context, api.CellUpdate) {
			started <- struct{}{}
			<-release
		}
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, err := ctrl.ToggleEdit(ctx, 0)
		require.NoError(t, err)
		_, err = ctrl.ToggleEdit(ctx, 1)
		require.NoError(t, err)

		type result struct {
			sent bool
			err  error
		}
		commit := func(index int, identifier, value string) <-chan result {
			out := make(chan result, 1)
			go func() {
				sent, err := ctrl.CommitCell(ctx, index, identifier, staff.ColumnAddress, value)
				out <- result{sent: sent, err: err}
			}()
			return out
		}
		first := commit(0, "1.111.111-1", "A")
		<-started
		second := commit(1, "2.111.111-1", "B")
		select {
		case <-second:
			t.Fatal("second commit returned while the first was in flight")
		case <-time.After(50 * time.Millisecond):
		}
		close(release)
		for _, ch := range []<-chan result{first, second} {
			res := <-ch
			require.NoError(t, res.err)
			assert.True(t, res.sent)
		}
		svc.mu.Lock()
		require.Len(t, svc.updates, 2)
		assert.Equal(t, "1.111.111-1", svc.updates[0].Identifier)
		assert.Equal(t, "2.111.111-1", svc.updates[1].Identifier)
		svc.mu.Unlock()
		snap := ctrl.Snapshot()
		assert.Equal(t, "A", snap.PristineRows[0].Address)
		assert.Equal(t, "B", snap.PristineRows[1].Address)
		assert.Equal(t, "B", snap.Rows[1].Address)
		assert.Equal(t, PhaseIdle, snap.Phase)
	})
}

func TestController_RowIdentity(t *testing.T) {
	t.Run("Should refuse a delete whose row left the page during the prompt", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(15)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		confirm := func(ctx context.Context, _ string) (bool, error) {
			require.NoError(t, ctrl.NextPage(ctx))
			return true, nil
		}
		deleted, err := ctrl.DeleteRow(ctx, 0, "1.111.111-1", confirm)
		assert.ErrorIs(t, err, ErrRowGone)
		assert.False(t, deleted)
		_, _, _, deletes := svc.counts()
		assert.Zero(t, deletes)
		assert.Equal(t, 2, ctrl.Snapshot().Pagination.Page)
	})
	t.Run("Should follow a row that moved within the page", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleSuperAdmin)
		_, err := ctrl.PromoteRole(ctx, 0, "2.111.111-1", confirmWith(true, nil))
		require.NoError(t, err)
		deleted, err := ctrl.DeleteRow(ctx, 0, "3.111.111-1", confirmWith(true, nil))
		require.NoError(t, err)
		assert.True(t, deleted)
		svc.mu.Lock()
		assert.Equal(t, []string{"2.111.111-1"}, svc.promotes)
		assert.Equal(t, []string{"3.111.111-1"}, svc.deletes)
		svc.mu.Unlock()
	})
	t.Run("Should not commit a cell onto the row that took its place", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, err := ctrl.ToggleEdit(ctx, 0)
		require.NoError(t, err)
		svc.mu.Lock()
		svc.rows = svc.rows[1:]
		svc.mu.Unlock()
		require.NoError(t, ctrl.Refresh(ctx))
		require.True(t, ctrl.Snapshot().Editing.Has(0))
		sent, err := ctrl.CommitCell(ctx, 0, "1.111.111-1", staff.ColumnAddress, "Calle 9")
		assert.ErrorIs(t, err, ErrRowGone)
		assert.False(t, sent)
		_, _, updates, _ := svc.counts()
		assert.Zero(t, updates)
	})
}

func TestController_Close(t *testing.T) {
	t.Run("Should return ErrClosed after close", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(3)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		lists, _, _, _ := svc.counts()
		ctrl.Close()
		assert.ErrorIs(t, ctrl.Refresh(ctx), ErrClosed)
		assert.ErrorIs(t, ctrl.SetPage(ctx, 1), ErrClosed)
		_, err := ctrl.ToggleEdit(ctx, 0)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = ctrl.CommitCell(ctx, 0, "1.111.111-1", staff.ColumnAddress, "Calle 9")
		assert.ErrorIs(t, err, ErrClosed)
		_, err = ctrl.DeleteRow(ctx, 0, "1.111.111-1", confirmWith(true, nil))
		assert.ErrorIs(t, err, ErrClosed)
		after, _, updates, deletes := svc.counts()
		assert.Equal(t, lists, after)
		assert.Zero(t, updates)
		assert.Zero(t, deletes)
	})
}

func TestController_ReloadDepartments(t *testing.T) {
	t.Run("Should reload options for rows still in edit mode", func(t *testing.T) {
		ctx := context.Background()
		svc := newFakeStaff(2)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		_, err := ctrl.ToggleEdit(ctx, 0)
		require.NoError(t, err)
		svc.mu.Lock()
		svc.departments = append(svc.departments, staff.Department{Name: "Parques"})
		svc.mu.Unlock()
		require.NoError(t, ctrl.ReloadDepartments(ctx))
		view, err := ctrl.Cell(0, staff.ColumnDepartment)
		require.NoError(t, err)
		assert.Equal(t, []string{"Obras", "Parques", "Salud"}, view.Options)
		svc.mu.Lock()
		assert.Equal(t, 2, svc.deptCalls)
		svc.mu.Unlock()
	})
	t.Run("Should defer the reload when no row is in edit mode", func(t *testing.T) {
		svc := newFakeStaff(2)
		ctrl := startedController(t, svc, staff.RoleAdmin)
		require.NoError(t, ctrl.ReloadDepartments(context.Background()))
		svc.mu.Lock()
		assert.Zero(t, svc.deptCalls)
		svc.mu.Unlock()
	})
}
