package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client is a thin HTTP client for the remote task record store.
//
// The store is the source of truth: this client forwards requests and
// responses verbatim without validating fields locally, so store-side
// error messages reach the caller unchanged.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for the record store rooted at baseURL. A trailing
// slash on baseURL is removed. If httpClient is nil, a default client
// without its own timeout is used; cancellation is controlled entirely by
// the caller's context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// CreateTask creates a new task record from the given fields and returns
// the store's response body as-is, regardless of HTTP status.
func (c *Client) CreateTask(ctx context.Context, fields TaskFields) (json.RawMessage, error) {
	raw, err := c.send(ctx, http.MethodPost, c.BaseURL, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return raw, nil
}

// ListTasks fetches task records matching the query and returns the
// store's response body as-is, regardless of HTTP status. Query
// parameters appear in the fixed order filter, sort, page; when none is
// set the request URL carries no query string at all.
func (c *Client) ListTasks(ctx context.Context, query ListQuery) (json.RawMessage, error) {
	raw, err := c.send(ctx, http.MethodGet, c.listURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return raw, nil
}

// UpdateTask applies a partial update to the task with the given id and
// returns the store's response body as-is, regardless of HTTP status.
// All fields are forwarded verbatim; unknown fields are the store's
// responsibility to ignore or reject.
func (c *Client) UpdateTask(ctx context.Context, taskID string, fields TaskFields) (json.RawMessage, error) {
	raw, err := c.send(ctx, http.MethodPatch, c.taskURL(taskID), fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return raw, nil
}

// DeleteTask removes the task with the given id. It reports whether the
// store answered with a 2xx status; the response body is never read.
func (c *Client) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.taskURL(taskID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// send performs a single HTTP round trip and returns the raw response
// body. The HTTP status is not consulted; callers that care about it
// issue their own request.
func (c *Client) send(ctx context.Context, method, reqURL string, fields TaskFields) (json.RawMessage, error) {
	var body io.Reader
	if fields != nil {
		payload, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if fields != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return raw, nil
}

// taskURL composes the resource URL for a single task. The id is
// appended as-is; ids are opaque strings assigned by the store.
func (c *Client) taskURL(taskID string) string {
	return c.BaseURL + "/" + taskID
}

// listURL composes the list URL with the query parameters that are set,
// in the fixed order filter, sort, page.
func (c *Client) listURL(query ListQuery) string {
	var params []string
	if query.Filter != "" {
		params = append(params, "filter="+encodeComponent(query.Filter))
	}
	if query.Sort != "" {
		params = append(params, "sort="+encodeComponent(query.Sort))
	}
	if query.Page != "" {
		params = append(params, "page="+encodeComponent(query.Page))
	}
	if len(params) == 0 {
		return c.BaseURL
	}
	return c.BaseURL + "?" + strings.Join(params, "&")
}

// queryEscaper adjusts url.QueryEscape output so that spaces become %20
// and the sub-delimiters ! ' ( ) * stay literal.
var queryEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a single query value. Filter expressions such
// as "(done=false)" keep their parentheses while "=" is percent-encoded,
// yielding "(done%3Dfalse)".
func encodeComponent(s string) string {
	return queryEscaper.Replace(url.QueryEscape(s))
}
