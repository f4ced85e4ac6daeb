package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/municrud/municrud/engine/staff"
	"github.com/tidwall/gjson"
)

// ListDepartments fetches the department catalog used by the department selector.
func (c *Client) ListDepartments(ctx context.Context) ([]staff.Department, error) {
	resp, err := c.call(ctx, "list departments", http.MethodGet, "/api/getDepartments", nil)
	if err != nil {
		return nil, err
	}
	return parseDepartments(resp.Body())
}

// parseDepartments reads {request:[{nombre,direccion}]}; a bare array is tolerated.
func parseDepartments(body []byte) ([]staff.Department, error) {
	return parseCatalog(body, "departments", func(name, address string) staff.Department {
		return staff.Department{Name: name, Address: address}
	})
}

// parseCatalog reads a list of {nombre,direccion} entries, skipping unnamed ones
func parseCatalog[T any](body []byte, what string, build func(name, address string) T) ([]T, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid %s payload", what)
	}
	list := gjson.GetBytes(body, "request")
	if !list.Exists() {
		list = gjson.ParseBytes(body)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%s payload is not a list", what)
	}
	out := make([]T, 0, len(list.Array()))
	list.ForEach(func(_, item gjson.Result) bool {
		name := strings.TrimSpace(item.Get("nombre").String())
		if name == "" {
			return true
		}
		out = append(out, build(name, item.Get("direccion").String()))
		return true
	})
	return out, nil
}

// CreateDepartment adds a department to the catalog
func (c *Client) CreateDepartment(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("department name is required")
	}
	var out MessageResponse
	_, err := c.call(ctx, "create department", http.MethodPost, "/api/newDepartment", func(r *resty.Request) {
		r.SetBody(map[string]string{"name": name}).SetResult(&out)
	})
	return out.Message, err
}

// RenameDepartment renames the department at the catalog index
func (c *Client) RenameDepartment(ctx context.Context, index int, newName string) (string, error) {
	if strings.TrimSpace(newName) == "" {
		return "", fmt.Errorf("new department name is required")
	}
	var out MessageResponse
	_, err := c.call(ctx, "rename department", http.MethodPut, "/api/updateDepartment/{index}", func(r *resty.Request) {
		r.SetPathParam("index", strconv.Itoa(index)).
			SetBody(map[string]string{"newName": newName}).
			SetResult(&out)
	})
	return out.Message, err
}

// DeleteDepartment removes the department at the catalog index
func (c *Client) DeleteDepartment(ctx context.Context, index int) (string, error) {
	var out MessageResponse
	_, err := c.call(ctx, "delete department", http.MethodDelete, "/api/deleteDepartment/{index}", func(r *resty.Request) {
		r.SetPathParam("index", strconv.Itoa(index)).SetResult(&out)
	})
	return out.Message, err
}
