package grid

import (
	"fmt"
	"sort"

	"github.com/mohae/deepcopy"
	"github.com/municrud/municrud/engine/staff"
)

// EditSet is the set of row indices rendering editable controls
type EditSet map[int]bool

func (s EditSet) Has(index int) bool {
	return s[index]
}

// Indices returns the members in ascending order
func (s EditSet) Indices() []int {
	out := make([]int, 0, len(s))
	for i, ok := range s {
		if ok {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Tracker holds the live rows, their pristine copies and the edit set.
// It is not safe for concurrent use; the Controller serializes access.
type Tracker struct {
	rows     []staff.Row
	pristine []staff.Row
	editing  EditSet
}

func NewTracker() *Tracker {
	return &Tracker{rows: []staff.Row{}, pristine: []staff.Row{}, editing: EditSet{}}
}

func copyRows(rows []staff.Row) []staff.Row {
	if rows == nil {
		return []staff.Row{}
	}
	out, ok := deepcopy.Copy(rows).([]staff.Row)
	if !ok || out == nil {
		out = make([]staff.Row, len(rows))
		copy(out, rows)
	}
	return out
}

// Load replaces rows and pristine copies together. With keepEditing the
// edit set survives, trimmed to the new row count.
func (t *Tracker) Load(rows []staff.Row, keepEditing bool) {
	t.rows = copyRows(rows)
	t.pristine = copyRows(rows)
	if !keepEditing {
		t.editing = EditSet{}
		return
	}
	for i := range t.editing {
		if i < 0 || i >= len(t.rows) {
			delete(t.editing, i)
		}
	}
}

func (t *Tracker) Len() int {
	return len(t.rows)
}

func (t *Tracker) checkIndex(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	return nil
}

// ToggleEdit flips edit mode for a row and reports the new state
func (t *Tracker) ToggleEdit(index int) (bool, error) {
	if err := t.checkIndex(index); err != nil {
		return false, err
	}
	if t.editing[index] {
		delete(t.editing, index)
		return false, nil
	}
	t.editing[index] = true
	return true, nil
}

func (t *Tracker) StopEditing(index int) {
	delete(t.editing, index)
}

func (t *Tracker) IsEditing(index int) bool {
	return t.editing.Has(index)
}

// Editing returns a copy of the edit set
func (t *Tracker) Editing() EditSet {
	out := make(EditSet, len(t.editing))
	for i, ok := range t.editing {
		out[i] = ok
	}
	return out
}

// Edit changes a cell of the live copy only
func (t *Tracker) Edit(index int, column staff.ColumnID, value string) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	return t.rows[index].Set(column, value)
}

// Revert restores the live row from its pristine copy when shouldRevert is
// set, otherwise it promotes the live row to the new pristine baseline.
func (t *Tracker) Revert(index int, shouldRevert bool) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	if shouldRevert {
		t.rows[index] = t.pristine[index]
	} else {
		t.pristine[index] = t.rows[index]
	}
	return nil
}

func (t *Tracker) Row(index int) (staff.Row, error) {
	if err := t.checkIndex(index); err != nil {
		return staff.Row{}, err
	}
	return t.rows[index], nil
}

// Pristine returns the last server-confirmed copy of a row
func (t *Tracker) Pristine(index int) (staff.Row, error) {
	if err := t.checkIndex(index); err != nil {
		return staff.Row{}, err
	}
	return t.pristine[index], nil
}

func (t *Tracker) Rows() []staff.Row {
	return copyRows(t.rows)
}

func (t *Tracker) PristineRows() []staff.Row {
	return copyRows(t.pristine)
}
