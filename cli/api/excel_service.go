package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/municrud/municrud/pkg/logger"
)

const (
	ExportFileName   = "userdata.xlsx"
	TemplateFileName = "template.xlsx"
)

// ImportBulk uploads a spreadsheet of new staff members as the excelFile form field.
func (c *Client) ImportBulk(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if content == nil {
		return "", fmt.Errorf("file content is required")
	}
	var out MessageResponse
	_, err := c.call(ctx, "import spreadsheet", http.MethodPost, "/api/uploadExcel", func(r *resty.Request) {
		r.SetFileReader("excelFile", fileName, content).SetResult(&out)
	})
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("spreadsheet imported", "file", fileName)
	return out.Message, nil
}

// ExportBulk downloads a spreadsheet with quantity rows starting at page.
func (c *Client) ExportBulk(ctx context.Context, quantity ExportQuantity, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	resp, err := c.call(ctx, "export spreadsheet", http.MethodGet, "/api/download", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"users": quantity.wireValue(),
			"page":  strconv.Itoa(page),
		}).SetHeader("Accept", "application/octet-stream")
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DownloadTemplate fetches the empty import template
func (c *Client) DownloadTemplate(ctx context.Context) ([]byte, error) {
	resp, err := c.call(ctx, "download template", http.MethodGet, "/api/template", func(r *resty.Request) {
		r.SetHeader("Accept", "application/octet-stream")
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
