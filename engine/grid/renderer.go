package grid

import "github.com/municrud/municrud/engine/staff"

// CellKind selects the control a cell is rendered with
type CellKind int

const (
	CellReadOnly CellKind = iota
	CellText
	CellNumeric
	CellSelect
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumeric:
		return "numeric"
	case CellSelect:
		return "select"
	default:
		return "read-only"
	}
}

// CellView describes how one cell is presented and committed.
type CellView struct {
	Kind  CellKind
	Value string
	// Options holds the selectable values of a CellSelect, never including Value.
	Options []string
	MaxLen  int
	// CommitOnChange is set for selects; inputs commit when focus leaves them.
	CommitOnChange bool
}

func (v CellView) Interactive() bool {
	return v.Kind != CellReadOnly
}

// RenderCell decides the presentation of a cell. departments are the cached
// department names offered while editing the department column.
func RenderCell(
	value string,
	rowIndex int,
	column staff.ColumnID,
	editing EditSet,
	viewer staff.Role,
	departments []string,
) CellView {
	readOnly := CellView{Kind: CellReadOnly, Value: value}
	if !editing.Has(rowIndex) || !viewer.CanEdit() {
		return readOnly
	}
	col, ok := staff.LookupColumn(column)
	if !ok {
		return readOnly
	}
	switch col.Kind {
	case staff.KindIdentifier:
		return readOnly
	case staff.KindDepartment:
		return CellView{
			Kind:           CellSelect,
			Value:          value,
			Options:        without(departments, value),
			CommitOnChange: true,
		}
	case staff.KindRole:
		if !viewer.CanChangeRoles() {
			return readOnly
		}
		roles := make([]string, 0, len(staff.Roles))
		for _, r := range staff.Roles {
			roles = append(roles, string(r))
		}
		return CellView{
			Kind:           CellSelect,
			Value:          value,
			Options:        without(roles, value),
			CommitOnChange: true,
		}
	case staff.KindNumeric:
		return CellView{Kind: CellNumeric, Value: value, MaxLen: col.MaxLen}
	default:
		return CellView{Kind: CellText, Value: value}
	}
}

func without(options []string, current string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if o != current {
			out = append(out, o)
		}
	}
	return out
}
