package grid

import (
	"strconv"
	"strings"
)

// Pagination is the footer state derived from the grid position
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	CanFirst   bool `json:"can_first"`
	CanPrev    bool `json:"can_prev"`
	CanNext    bool `json:"can_next"`
	CanLast    bool `json:"can_last"`
}

// TotalPages follows the backend's page arithmetic: floor(total/pageSize)+1.
// An exact multiple therefore yields a trailing empty page.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount < 0 {
		return 1
	}
	return totalCount/pageSize + 1
}

// ClampPage bounds page to [1, totalPages]
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	default:
		return page
	}
}

// Paginate computes the footer for a position
func Paginate(page, pageSize, totalCount int) Pagination {
	totalPages := TotalPages(totalCount, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		CanFirst:   page > 1,
		CanPrev:    page > 1,
		CanNext:    page < totalPages,
		CanLast:    page < totalPages,
	}
}

// ParsePageInput reads a typed page number. Non-numeric input reports false;
// numeric input is clamped into range.
func ParsePageInput(input string, totalPages int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return ClampPage(n, totalPages), true
}
