package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/municrud/municrud/engine/staff"
	"github.com/municrud/municrud/pkg/logger"
)

// StaffService is the subset of the gateway the grid depends on.
type StaffService interface {
	List(ctx context.Context, params ListParams) (*Page, error)
	FilterSort(ctx context.Context, params SortParams) (*Page, error)
	UpdateCell(ctx context.Context, update CellUpdate) (string, error)
	DeleteRow(ctx context.Context, identifier string) error
	PromoteRole(ctx context.Context, identifier string) (string, error)
	ListDepartments(ctx context.Context) ([]staff.Department, error)
}

var _ StaffService = (*Client)(nil)

// CellUpdate is one edited cell as sent to the update endpoint.
type CellUpdate struct {
	Identifier string
	Column     staff.ColumnID
	Value      string
	ViewerRole staff.Role
	// PageSize and Page echo the grid position, the backend expects them.
	PageSize int
	Page     int
}

type updateValues struct {
	Identifier string     `json:"rut"`
	ColumnID   string     `json:"columnId"`
	Value      string     `json:"value"`
	Role       staff.Role `json:"rol"`
}

type updateBody struct {
	Values   updateValues `json:"values"`
	PageSize int          `json:"pageSize"`
	Page     int          `json:"page"`
}

// List fetches a page, optionally narrowed by a search column and value.
func (c *Client) List(ctx context.Context, params ListParams) (*Page, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	var out struct {
		Content   []staff.Row `json:"content"`
		TotalData int         `json:"totalData"`
	}
	_, err := c.call(ctx, "list staff", http.MethodGet, "/api/newData", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"searchValue":  params.SearchValue,
			"searchColumn": string(params.SearchColumn),
			"pageSize":     strconv.Itoa(params.PageSize),
			"page":         strconv.Itoa(params.Page),
		}).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &Page{Rows: nonNilRows(out.Content), TotalCount: out.TotalData}, nil
}

// Search is List with a search column and value
func (c *Client) Search(ctx context.Context, column staff.ColumnID, value string, pageSize, page int) (*Page, error) {
	return c.List(ctx, ListParams{SearchValue: value, SearchColumn: column, PageSize: pageSize, Page: page})
}

// FilterSort fetches a page ordered by one column.
func (c *Client) FilterSort(ctx context.Context, params SortParams) (*Page, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	var out struct {
		FilteredData []staff.Row `json:"filteredData"`
		TotalData    int         `json:"totalData"`
	}
	_, err := c.call(ctx, "sort staff", http.MethodGet, "/api/filterUsers", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"column":    string(params.Column),
			"sendOrder": strconv.Itoa(params.Direction.SendOrder()),
			"pageSize":  strconv.Itoa(params.PageSize),
			"page":      strconv.Itoa(params.Page),
		}).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &Page{Rows: nonNilRows(out.FilteredData), TotalCount: out.TotalData}, nil
}

// UpdateCell pushes one changed cell. The server decides whether the viewer may change it.
func (c *Client) UpdateCell(ctx context.Context, update CellUpdate) (string, error) {
	if update.Identifier == "" {
		return "", fmt.Errorf("identifier is required")
	}
	body := updateBody{
		Values: updateValues{
			Identifier: update.Identifier,
			ColumnID:   string(update.Column),
			Value:      update.Value,
			Role:       update.ViewerRole,
		},
		PageSize: update.PageSize,
		Page:     update.Page,
	}
	var out MessageResponse
	_, err := c.call(ctx, "update cell", http.MethodPut, "/api/update", func(r *resty.Request) {
		r.SetBody(body).SetResult(&out)
	})
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("cell updated", "rut", update.Identifier, "column", update.Column)
	return out.Message, nil
}

// DeleteRow removes a staff member. Callers must confirm with the user first.
func (c *Client) DeleteRow(ctx context.Context, identifier string) error {
	if identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	_, err := c.call(ctx, "delete staff", http.MethodDelete, "/api/delete/{rut}", func(r *resty.Request) {
		r.SetPathParam("rut", identifier)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("staff deleted", "rut", identifier)
	return nil
}

// PromoteRole toggles a staff member between user and admin.
func (c *Client) PromoteRole(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("identifier is required")
	}
	var out MessageResponse
	_, err := c.call(ctx, "promote staff", http.MethodPut, "/api/newAdmin/{rut}", func(r *resty.Request) {
		r.SetPathParam("rut", identifier).SetResult(&out)
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// CreateUser posts a new staff member. The payload is validated first and
// nothing is sent when validation fails.
func (c *Client) CreateUser(ctx context.Context, user staff.NewUser) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	var out MessageResponse
	_, err := c.call(ctx, "create staff", http.MethodPost, "/api/newUser", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(user).SetResult(&out)
	})
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("staff created", "rut", user.Identifier, "role", user.Role)
	return out.Message, nil
}

// CurrentUser returns the profile of the session's owner
func (c *Client) CurrentUser(ctx context.Context) (*staff.Row, error) {
	var out staff.Row
	_, err := c.call(ctx, "get current user", http.MethodGet, "/api/getUserData", func(r *resty.Request) {
		r.SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func nonNilRows(rows []staff.Row) []staff.Row {
	if rows == nil {
		return []staff.Row{}
	}
	return rows
}
