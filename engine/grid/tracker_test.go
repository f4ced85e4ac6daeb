package grid

import (
	"testing"

	"github.com/municrud/municrud/engine/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := NewTracker()
	tr.Load(newFakeStaff(3).rows, false)
	return tr
}

func TestTracker(t *testing.T) {
	t.Run("Should keep rows and pristine copies the same length", func(t *testing.T) {
		tr := loadedTracker(t)
		assert.Len(t, tr.Rows(), 3)
		assert.Len(t, tr.PristineRows(), 3)
	})
	t.Run("Should not alias the loaded slice", func(t *testing.T) {
		src := newFakeStaff(1).rows
		tr := NewTracker()
		tr.Load(src, false)
		src[0].Email = "changed@muni.cl"
		row, err := tr.Row(0)
		require.NoError(t, err)
		assert.Equal(t, "user1@muni.cl", row.Email)
	})
	t.Run("Should restore the fetched value on revert", func(t *testing.T) {
		tr := loadedTracker(t)
		require.NoError(t, tr.Edit(1, staff.ColumnEmail, "draft@muni.cl"))
		require.NoError(t, tr.Revert(1, true))
		row, _ := tr.Row(1)
		assert.Equal(t, "user2@muni.cl", row.Email)
	})
	t.Run("Should make an accepted edit the new baseline", func(t *testing.T) {
		tr := loadedTracker(t)
		require.NoError(t, tr.Edit(1, staff.ColumnEmail, "kept@muni.cl"))
		require.NoError(t, tr.Revert(1, false))
		pristine, _ := tr.Pristine(1)
		assert.Equal(t, "kept@muni.cl", pristine.Email)
		require.NoError(t, tr.Revert(1, true))
		row, _ := tr.Row(1)
		assert.Equal(t, "kept@muni.cl", row.Email)
	})
	t.Run("Should toggle edit mode and reject bad indices", func(t *testing.T) {
		tr := loadedTracker(t)
		on, err := tr.ToggleEdit(2)
		require.NoError(t, err)
		assert.True(t, on)
		assert.Equal(t, []int{2}, tr.Editing().Indices())
		on, _ = tr.ToggleEdit(2)
		assert.False(t, on)
		_, err = tr.ToggleEdit(3)
		assert.ErrorIs(t, err, ErrRowOutOfRange)
	})
	t.Run("Should trim the edit set to the reloaded rows", func(t *testing.T) {
		tr := loadedTracker(t)
		_, _ = tr.ToggleEdit(0)
		_, _ = tr.ToggleEdit(2)
		tr.Load(newFakeStaff(2).rows, true)
		assert.Equal(t, []int{0}, tr.Editing().Indices())
		tr.Load(newFakeStaff(2).rows, false)
		assert.Empty(t, tr.Editing().Indices())
	})
	t.Run("Should refuse to edit the identifier", func(t *testing.T) {
		tr := loadedTracker(t)
		assert.ErrorIs(t, tr.Edit(0, staff.ColumnIdentifier, "x"), staff.ErrImmutableIdentifier)
	})
}
