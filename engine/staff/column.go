package staff

import "fmt"

// ColumnID identifies a grid column. Values match the backend field names.
type ColumnID string

const (
	ColumnIdentifier ColumnID = "rut"
	ColumnFirstNames ColumnID = "nombres"
	ColumnLastNames  ColumnID = "apellidos"
	ColumnEmail      ColumnID = "email"
	ColumnRole       ColumnID = "rol"
	ColumnDepartment ColumnID = "dependencias"
	ColumnAddress    ColumnID = "direcciones"
	ColumnJobNumber  ColumnID = "numMunicipal"
	ColumnExtension  ColumnID = "anexoMunicipal"
)

// ColumnKind declares how a column's values are edited
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumeric
	KindRole
	KindDepartment
	KindIdentifier
)

// Column describes one grid column
type Column struct {
	ID     ColumnID
	Title  string
	Kind   ColumnKind
	Width  int
	MaxLen int // bounds numeric inputs, zero means unbounded
}

var columns = []Column{
	{ID: ColumnIdentifier, Title: "RUT", Kind: KindIdentifier, Width: 13},
	{ID: ColumnFirstNames, Title: "Names", Kind: KindText, Width: 18},
	{ID: ColumnLastNames, Title: "Last names", Kind: KindText, Width: 18},
	{ID: ColumnEmail, Title: "Email", Kind: KindText, Width: 26},
	{ID: ColumnRole, Title: "Role", Kind: KindRole, Width: 11},
	{ID: ColumnDepartment, Title: "Department", Kind: KindDepartment, Width: 20},
	{ID: ColumnAddress, Title: "Address", Kind: KindText, Width: 20},
	{ID: ColumnJobNumber, Title: "Job number", Kind: KindNumeric, Width: 14, MaxLen: MaxJobNumberLen},
	{ID: ColumnExtension, Title: "Ext.", Kind: KindNumeric, Width: 6, MaxLen: MaxExtensionLen},
}

// Columns returns the grid columns in display order
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// LookupColumn finds a column by id
func LookupColumn(id ColumnID) (Column, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// ParseColumn converts a raw column id, rejecting unknown ones.
func ParseColumn(s string) (ColumnID, error) {
	if _, ok := LookupColumn(ColumnID(s)); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownColumn, s)
	}
	return ColumnID(s), nil
}
