// Package client is the thin HTTP client for the job service API,
// shared by the three CI resource adapters.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bindery/internal/model"
)

// StatusError reports a non-2xx answer from the job service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("job service returned %d: %s", e.Code, e.Body)
}

// Client talks to the job service under a single API root, e.g.
// "https://jobs.example.org/api".
type Client struct {
	apiRoot string
	httpc   *http.Client
}

// New creates a Client for the given API root. A trailing slash on the
// root is tolerated.
func New(apiRoot string) *Client {
	return &Client{
		apiRoot: strings.TrimRight(apiRoot, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiRoot+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ListJobs fetches the default job listing (newest first, at most one
// page). The adapters accept this ceiling and do not paginate.
func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	var out []model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJob fetches a single job by its string id.
func (c *Client) GetJob(ctx context.Context, id string) (model.Job, error) {
	var out model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/"+id, nil, &out); err != nil {
		return model.Job{}, err
	}
	return out, nil
}

// UpdateJob issues a sparse update; params is sent verbatim as the
// JobUpdate body so absent keys stay absent on the wire.
func (c *Client) UpdateJob(ctx context.Context, id string, params map[string]any) (model.Job, error) {
	var out model.Job
	if err := c.do(ctx, http.MethodPut, "/jobs/"+id, params, &out); err != nil {
		return model.Job{}, err
	}
	return out, nil
}
