package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoToken is returned before any request when the session has no token
	ErrNoToken = errors.New("no session token configured")
	// ErrUnauthorized matches any 401 response
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches any 403 response
	ErrForbidden = errors.New("forbidden")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed (status %d)", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %s (status %d)", e.Operation, e.Message, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case helpers.ErrAuth:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

func newAPIError(op string, resp *resty.Response) *APIError {
	return &APIError{
		Operation:  op,
		StatusCode: resp.StatusCode(),
		Message:    parseAPIError(resp),
		RequestID:  resp.Request.Header.Get(requestIDHeader),
	}
}

// parseAPIError extracts the server's message from {error} or {message} bodies.
func parseAPIError(resp *resty.Response) string {
	body := resp.Body()
	if len(body) == 0 {
		return http.StatusText(resp.StatusCode())
	}
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"error", "message", "error.message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return strings.TrimSpace(v.Str)
		}
	}
	return http.StatusText(resp.StatusCode())
}

func transformRequestError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, ErrNoToken) {
		return fmt.Errorf("%s: %w: %w", op, err, helpers.ErrAuth)
	}
	return helpers.NewNetworkError(op, err)
}
