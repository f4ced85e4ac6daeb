package grid

import "errors"

var (
	ErrRowOutOfRange     = errors.New("row index out of range")
	ErrReadOnly          = errors.New("viewer cannot edit staff records")
	ErrNotEditing        = errors.New("row is not in edit mode")
	ErrForbiddenColumn   = errors.New("viewer cannot change this column")
	ErrPromoteSuperAdmin = errors.New("superAdmin accounts cannot be promoted or demoted")
	ErrInvalidPageSize   = errors.New("invalid page size")
	ErrRowGone           = errors.New("row is no longer on the current page")
	ErrClosed            = errors.New("grid is closed")
)
