// Package todoapi implements service.Service and service.Auth against the
// TodoPro REST API.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todopro/internal/config"
	"todopro/internal/service"
	"todopro/internal/session"
)

// Client implements service.Service. Every request carries the session's
// bearer token.
type Client struct {
	requester
}

// New creates a task client for the configured API using the session token.
// The base HTTP client is taken from ctx (oauth2.HTTPClient) when present.
func New(ctx context.Context, cfg *config.Config, sess *session.Session, log *zap.Logger) (*Client, error) {
	if sess == nil || sess.Token == "" {
		return nil, service.ErrNoToken
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
	})
	return NewWithHTTPClient(cfg.APIURL, oauth2.NewClient(ctx, ts), log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// httpClient is expected to attach the Authorization header itself.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	r, err := newRequester(baseURL, httpClient, log)
	if err != nil {
		return nil, err
	}
	return &Client{requester: r}, nil
}

// List returns all tasks in server order.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	data, err := c.send(ctx, http.MethodGet, c.endpoint("todos"), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrNetwork, wrapError(err))
	}
	tasks, err := decodeList(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrNetwork, err)
	}
	return tasks, nil
}

// Create adds a task.
func (c *Client) Create(ctx context.Context, draft service.Draft) (service.Outcome, error) {
	data, err := c.send(ctx, http.MethodPost, c.endpoint("todos", "add"), draft, nil)
	if err != nil {
		return service.Outcome{}, fmt.Errorf("%w: %w", service.ErrCreate, wrapError(err))
	}
	out, err := decodeOutcome(data, "", nil)
	if err != nil {
		return service.Outcome{}, fmt.Errorf("%w: %w", service.ErrCreate, err)
	}
	return out, nil
}

// SetStatus sets the completion status of a task.
func (c *Client) SetStatus(ctx context.Context, id service.ID, status bool) (service.Outcome, error) {
	body := struct {
		Status bool `json:"status"`
	}{status}
	data, err := c.send(ctx, http.MethodPut, c.endpoint("todos", url.PathEscape(string(id))), body, nil)
	if err != nil {
		return service.Outcome{}, fmt.Errorf("%w: %w", service.ErrUpdate, wrapError(err))
	}
	out, err := decodeOutcome(data, id, &status)
	if err != nil {
		return service.Outcome{}, fmt.Errorf("%w: %w", service.ErrUpdate, err)
	}
	return out, nil
}

// Delete removes a task. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, id service.ID) error {
	if _, err := c.send(ctx, http.MethodDelete, c.endpoint("todos", url.PathEscape(string(id))), nil, nil); err != nil {
		return fmt.Errorf("%w: %w", service.ErrDelete, wrapError(err))
	}
	return nil
}

// decodeList accepts a bare JSON array or an object carrying "results".
func decodeList(data []byte) ([]service.Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var tasks []service.Task
	if data[0] == '{' {
		var env struct {
			Results []service.Task `json:"results"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("invalid response: %w", err)
		}
		tasks = env.Results
	} else if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// decodeOutcome reads either a full replacement list ("results") or a
// single record. A record without an id takes fallbackID, and one without
// a status takes requested when set.
func decodeOutcome(data []byte, fallbackID service.ID, requested *bool) (service.Outcome, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return service.Outcome{}, fmt.Errorf("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return service.Outcome{}, fmt.Errorf("invalid response: %w", err)
	}

	if raw, ok := fields["results"]; ok && string(raw) != "null" {
		var results []service.Task
		if err := json.Unmarshal(raw, &results); err != nil {
			return service.Outcome{}, fmt.Errorf("invalid results: %w", err)
		}
		if results == nil {
			results = []service.Task{}
		}
		return service.Outcome{Results: results}, nil
	}

	var rec service.Task
	if err := json.Unmarshal(data, &rec); err != nil {
		return service.Outcome{}, fmt.Errorf("invalid task: %w", err)
	}
	if rec.ID == "" {
		rec.ID = fallbackID
	}
	if _, ok := fields["status"]; !ok && requested != nil {
		rec.Status = *requested
	}
	if rec.ID == "" {
		return service.Outcome{}, fmt.Errorf("response carries neither results nor a task")
	}
	return service.Outcome{Record: &rec}, nil
}
