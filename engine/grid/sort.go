package grid

import (
	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/engine/staff"
)

// Sort is the active ordering. A zero Sort means the plain listing.
type Sort struct {
	Column    staff.ColumnID    `json:"column,omitempty"`
	Direction api.SortDirection `json:"direction,omitempty"`
}

func (s Sort) Active() bool {
	return s.Column != ""
}

// NextSort advances the ordering for a header selection. The same column
// cycles asc, desc, normal; a different column starts over at asc.
func NextSort(current Sort, column staff.ColumnID) Sort {
	if current.Column != column {
		return Sort{Column: column, Direction: api.SortAsc}
	}
	return Sort{Column: column, Direction: current.Direction.Next()}
}

// Search is the active search criteria
type Search struct {
	Column staff.ColumnID `json:"column,omitempty"`
	Value  string         `json:"value,omitempty"`
}

func (s Search) Active() bool {
	return s.Value != ""
}
