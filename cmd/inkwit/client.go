package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"inkwit/internal/api"
	"inkwit/internal/queue"
)

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(address, token string) (*apiClient, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("daemon API address not configured; set paths.api_bind or pass --addr")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	if _, err := url.Parse(address); err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}
	return &apiClient{
		baseURL:    strings.TrimRight(address, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *apiClient) DaemonStatus(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &status)
	return status, err
}

func (c *apiClient) SubmitPath(ctx context.Context, imagePath string) (api.RunView, error) {
	var resp api.RunResponse
	payload := map[string]string{"image_path": imagePath}
	err := c.do(ctx, http.MethodPost, "/api/runs", payload, &resp)
	return resp.Run, err
}

func (c *apiClient) ListRuns(ctx context.Context, stages ...queue.Stage) ([]api.RunView, error) {
	path := "/api/runs"
	if len(stages) > 0 {
		values := url.Values{}
		for _, stage := range stages {
			values.Add("stage", string(stage))
		}
		path += "?" + values.Encode()
	}
	var resp api.RunListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

func (c *apiClient) Run(ctx context.Context, id string) (api.RunView, error) {
	var resp api.RunResponse
	err := c.do(ctx, http.MethodGet, "/api/runs/"+url.PathEscape(id), nil, &resp)
	return resp.Run, err
}

func (c *apiClient) RunStatus(ctx context.Context, id string) (api.StatusView, error) {
	var status api.StatusView
	err := c.do(ctx, http.MethodGet, "/api/runs/"+url.PathEscape(id)+"/status", nil, &status)
	return status, err
}

func (c *apiClient) RunResult(ctx context.Context, id string) (api.ResultView, error) {
	var result api.ResultView
	err := c.do(ctx, http.MethodGet, "/api/runs/"+url.PathEscape(id)+"/result", nil, &result)
	return result, err
}

func (c *apiClient) RetryRuns(ctx context.Context, ids []string) (int64, error) {
	var resp api.RetryResponse
	err := c.do(ctx, http.MethodPost, "/api/runs/retry", api.RetryRequest{IDs: ids}, &resp)
	return resp.Retried, err
}

func (c *apiClient) ClearRuns(ctx context.Context, scope string) (int64, error) {
	path := "/api/runs"
	if scope != "" {
		path += "?scope=" + url.QueryEscape(scope)
	}
	var resp api.ClearResponse
	err := c.do(ctx, http.MethodDelete, path, nil, &resp)
	return resp.Removed, err
}

func (c *apiClient) TestNotification(ctx context.Context) (api.NotificationTestResponse, error) {
	var resp api.NotificationTestResponse
	err := c.do(ctx, http.MethodPost, "/api/notifications/test", nil, &resp)
	return resp, err
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New(decodeError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("daemon returned %s", resp.Status)
}

func wrapDialError(err error, address string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; verify inkwitd is running", address)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
