package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/jseval/pkg/domain"
)

// Client implements ports.Channel against a Server. It has no blocking call path.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InvokeAsync posts the call to /invoke.
func (c *Client) InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(InvokeRequest{Identifier: identifier, Args: args})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out InvokeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxRequestBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: status %d: invalid response: %v", domain.ErrRemote, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrRemote, domain.ErrEntryPointNotFound, out.Error)
	case resp.StatusCode != http.StatusOK || out.Error != "":
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRemote, resp.StatusCode, out.Error)
	}
	if len(out.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return out.Result, nil
}
