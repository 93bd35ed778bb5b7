package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Grafana HTTP API with basic auth.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// NewClient creates a Grafana client. Empty arguments fall back to the
// conventional local defaults.
func NewClient(baseURL, user, password string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if user == "" {
		user = "admin"
	}
	if password == "" {
		password = "admin"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// PushResult is the outcome of a dashboard create call.
type PushResult struct {
	Success    bool   `json:"success"`
	UID        string `json:"uid,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

// CreateDashboard creates or overwrites a dashboard. Transport and API
// errors come back inside the result, not as a returned error.
func (c *Client) CreateDashboard(ctx context.Context, dashboard map[string]any) *PushResult {
	payload := map[string]any{
		"dashboard": dashboard,
		"folderId":  0,
		"overwrite": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &PushResult{Success: false, Error: err.Error()}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/dashboards/db", bytes.NewReader(body))
	if err != nil {
		return &PushResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &PushResult{Success: false, Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &PushResult{Success: false, Error: string(raw), StatusCode: resp.StatusCode}
	}

	var data struct {
		UID string `json:"uid"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return &PushResult{Success: false, Error: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return &PushResult{
		Success: true,
		UID:     data.UID,
		URL:     c.baseURL + data.URL,
	}
}

// GetDashboard fetches a dashboard by UID.
func (c *Client) GetDashboard(ctx context.Context, uid string) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/dashboards/uid/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard %s not found (status %d)", uid, resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return out, nil
}

// DeleteDashboard removes a dashboard by UID.
func (c *Client) DeleteDashboard(ctx context.Context, uid string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/dashboards/uid/"+url.PathEscape(uid), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to delete dashboard %s (status %d)", uid, resp.StatusCode)
	}
	return nil
}

// Search lists dashboards, optionally filtered by a query string.
func (c *Client) Search(ctx context.Context, query string) ([]map[string]any, error) {
	path := "/api/search"
	if query != "" {
		path += "?query=" + url.QueryEscape(query)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search dashboards: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed (status %d)", resp.StatusCode)
	}

	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return out, nil
}

// Health reports whether the Grafana instance responds on its health
// endpoint.
func (c *Client) Health(ctx context.Context) bool {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.password)
	return req, nil
}
