package staff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Role represents the permission tier of a staff member
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// Roles lists every role in the order they are offered in selectors
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

// Valid checks if the role is a valid value
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperAdmin
}

// CanEdit reports whether a viewer with this role may open rows for editing.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanChangeRoles reports whether a viewer with this role may set the role column.
func (r Role) CanChangeRoles() bool {
	return r == RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q: must be one of user, admin, superAdmin", s)
	}
	return r, nil
}

// NumericString is a digit string that the backend may encode as a JSON number.
type NumericString string

// UnmarshalJSON accepts both "1234" and 1234.
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("numeric string: %w", err)
	}
	if i, err := num.Int64(); err == nil {
		*n = NumericString(strconv.FormatInt(i, 10))
		return nil
	}
	*n = NumericString(num.String())
	return nil
}

// Row is one staff record as exchanged with the backend.
type Row struct {
	Identifier string        `json:"rut"`
	FirstNames string        `json:"nombres"`
	LastNames  string        `json:"apellidos"`
	Email      string        `json:"email"`
	Role       Role          `json:"rol"`
	Department string        `json:"dependencias"`
	Address    string        `json:"direcciones"`
	JobNumber  NumericString `json:"numMunicipal"`
	Extension  NumericString `json:"anexoMunicipal"`
}

// FullName joins first and last names
func (r Row) FullName() string {
	switch {
	case r.FirstNames == "":
		return r.LastNames
	case r.LastNames == "":
		return r.FirstNames
	default:
		return r.FirstNames + " " + r.LastNames
	}
}

// Get returns the string value of a column
func (r Row) Get(col ColumnID) string {
	switch col {
	case ColumnIdentifier:
		return r.Identifier
	case ColumnFirstNames:
		return r.FirstNames
	case ColumnLastNames:
		return r.LastNames
	case ColumnEmail:
		return r.Email
	case ColumnRole:
		return string(r.Role)
	case ColumnDepartment:
		return r.Department
	case ColumnAddress:
		return r.Address
	case ColumnJobNumber:
		return string(r.JobNumber)
	case ColumnExtension:
		return string(r.Extension)
	default:
		return ""
	}
}

// Set assigns a column value on the in-memory row.
func (r *Row) Set(col ColumnID, value string) error {
	switch col {
	case ColumnIdentifier:
		return ErrImmutableIdentifier
	case ColumnFirstNames:
		r.FirstNames = value
	case ColumnLastNames:
		r.LastNames = value
	case ColumnEmail:
		r.Email = value
	case ColumnRole:
		role, err := ParseRole(value)
		if err != nil {
			return err
		}
		r.Role = role
	case ColumnDepartment:
		r.Department = value
	case ColumnAddress:
		r.Address = value
	case ColumnJobNumber:
		r.JobNumber = NumericString(value)
	case ColumnExtension:
		r.Extension = NumericString(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	return nil
}

// Department is an entry of the municipal department catalog
type Department struct {
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
}

// Direction is a municipal direction and the address it works from
type Direction struct {
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
}
