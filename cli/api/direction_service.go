package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/municrud/municrud/engine/staff"
)

// ListDirections fetches the municipal directions with their addresses
func (c *Client) ListDirections(ctx context.Context) ([]staff.Direction, error) {
	resp, err := c.call(ctx, "list directions", http.MethodGet, "/api/getDirections", nil)
	if err != nil {
		return nil, err
	}
	return parseCatalog(resp.Body(), "directions", func(name, address string) staff.Direction {
		return staff.Direction{Name: name, Address: address}
	})
}

// CreateDirection adds a direction. Both name and address are required.
func (c *Client) CreateDirection(ctx context.Context, name, address string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("direction name is required")
	}
	if strings.TrimSpace(address) == "" {
		return "", fmt.Errorf("direction address is required")
	}
	var out MessageResponse
	_, err := c.call(ctx, "create direction", http.MethodPost, "/api/newDirection", func(r *resty.Request) {
		r.SetBody(map[string]string{"newDirection": name, "address": address}).SetResult(&out)
	})
	return out.Message, err
}

// DirectionUpdate names the fields to change. Nil fields are sent as null and
// left untouched by the backend.
type DirectionUpdate struct {
	Name    *string `json:"editDirection"`
	Address *string `json:"address"`
}

// UpdateDirection changes the direction at the catalog index
func (c *Client) UpdateDirection(ctx context.Context, index int, update DirectionUpdate) (string, error) {
	if update.Name == nil && update.Address == nil {
		return "", fmt.Errorf("nothing to update")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return "", fmt.Errorf("direction name cannot be empty")
	}
	var out MessageResponse
	_, err := c.call(ctx, "update direction", http.MethodPut, "/api/updateDirection/{index}", func(r *resty.Request) {
		r.SetPathParam("index", strconv.Itoa(index)).SetBody(update).SetResult(&out)
	})
	return out.Message, err
}

// DeleteDirection removes the direction at the catalog index
func (c *Client) DeleteDirection(ctx context.Context, index int) (string, error) {
	var out MessageResponse
	_, err := c.call(ctx, "delete direction", http.MethodDelete, "/api/deleteDirection/{index}", func(r *resty.Request) {
		r.SetPathParam("index", strconv.Itoa(index)).SetResult(&out)
	})
	return out.Message, err
}
