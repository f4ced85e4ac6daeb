package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/municrud/municrud/pkg/config"
	"github.com/municrud/municrud/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Client is the typed gateway to the staff backend.
type Client struct {
	http    *resty.Client
	session *Session
}

// NewClient builds a gateway from the API configuration and an explicit session.
// Requests are never retried.
func NewClient(cfg *config.Config, session *Session) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	baseURL, err := validateBaseURL(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.API.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{http: httpClient, session: session}, nil
}

// Session returns the session the client authenticates with
func (c *Client) Session() *Session {
	return c.session
}

func validateBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("base URL must be absolute, got: %s", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	return raw, nil
}

// request prepares an authenticated request bound to ctx.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token := c.session.Token()
	if token == "" {
		return nil, ErrNoToken
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader(requestIDHeader, uuid.NewString()), nil
}

// execute sends the request and turns transport failures and non-2xx responses into errors.
func (c *Client) execute(ctx context.Context, op string, req *resty.Request, method, path string) (*resty.Response, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		log.Debug("request failed", "op", op, "error", err)
		return nil, transformRequestError(op, err)
	}
	log.Debug("request completed",
		"op", op,
		"status", resp.StatusCode(),
		"request_id", req.Header.Get(requestIDHeader),
		"duration", time.Since(start),
	)
	if resp.IsError() {
		return resp, newAPIError(op, resp)
	}
	return resp, nil
}

// call is the common path for JSON endpoints.
func (c *Client) call(
	ctx context.Context,
	op, method, path string,
	configure func(*resty.Request),
) (*resty.Response, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, transformRequestError(op, err)
	}
	if configure != nil {
		configure(req)
	}
	return c.execute(ctx, op, req, method, path)
}

// IsAuthFailure reports whether err means the session token was missing or rejected.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoToken)
}
