package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/municrud/municrud/engine/staff"
)

// PageSizes are the page sizes the backend accepts
var PageSizes = []int{10, 20, 30, 40, 50}

// ValidPageSize reports whether n is an accepted page size
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// SortDirection is the order requested from the filter endpoint
type SortDirection string

const (
	SortAsc    SortDirection = "asc"
	SortDesc   SortDirection = "desc"
	SortNormal SortDirection = "normal"
)

// SendOrder maps the direction to the backend's numeric encoding.
func (d SortDirection) SendOrder() int {
	switch d {
	case SortAsc:
		return 1
	case SortDesc:
		return -1
	default:
		return 0
	}
}

// Next advances asc -> desc -> normal -> asc
func (d SortDirection) Next() SortDirection {
	switch d {
	case SortAsc:
		return SortDesc
	case SortDesc:
		return SortNormal
	default:
		return SortAsc
	}
}

// ParseSortDirection converts a raw direction string
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	case SortNormal, "":
		return SortNormal, nil
	}
	return "", fmt.Errorf("invalid sort direction %q: must be asc, desc or normal", s)
}

// Page is one page of rows plus the server-side total.
type Page struct {
	Rows       []staff.Row `json:"rows"`
	TotalCount int         `json:"total_count"`
}

// ListParams selects a page of the plain or searched listing
type ListParams struct {
	SearchValue  string
	SearchColumn staff.ColumnID
	PageSize     int
	Page         int
}

func (p ListParams) validate() error {
	return validatePaging(p.PageSize, p.Page)
}

// SortParams selects a page of the sorted listing
type SortParams struct {
	Column    staff.ColumnID
	Direction SortDirection
	PageSize  int
	Page      int
}

func (p SortParams) validate() error {
	if p.Column == "" {
		return fmt.Errorf("sort column is required")
	}
	return validatePaging(p.PageSize, p.Page)
}

func validatePaging(pageSize, page int) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", page)
	}
	if !ValidPageSize(pageSize) {
		return fmt.Errorf("page size must be one of %v, got %d", PageSizes, pageSize)
	}
	return nil
}

// ExportQuantity is how many rows a spreadsheet export contains. Zero means all rows.
type ExportQuantity int

const ExportAll ExportQuantity = 0

// ParseExportQuantity accepts a page size or "all"
func ParseExportQuantity(s string) (ExportQuantity, error) {
	if strings.EqualFold(s, "all") {
		return ExportAll, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !ValidPageSize(n) {
		return 0, fmt.Errorf("invalid export quantity %q: must be one of %v or all", s, PageSizes)
	}
	return ExportQuantity(n), nil
}

// wireValue is the backend encoding, which spells "all" as "todo".
func (q ExportQuantity) wireValue() string {
	if q == ExportAll {
		return "todo"
	}
	return strconv.Itoa(int(q))
}

func (q ExportQuantity) String() string {
	if q == ExportAll {
		return "all"
	}
	return strconv.Itoa(int(q))
}

// MessageResponse is the {message} envelope returned by mutations
type MessageResponse struct {
	Message string `json:"message"`
}
