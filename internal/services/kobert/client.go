package kobert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwit/internal/knowledge"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8602"
	defaultHTTPTimeout = 30 * time.Second
)

// Client calls the persona classifier service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the classifier client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient constructs a classifier client.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	if base := strings.TrimSpace(baseURL); base != "" {
		client.baseURL = strings.TrimRight(base, "/")
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Persona string `json:"persona"`
	Error   string `json:"error"`
}

// Predict sends narrative text to the classifier and returns the persona
// type it assigns. An unrecognized label is an error.
func (c *Client) Predict(ctx context.Context, text string) (knowledge.PersonaType, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return knowledge.PersonaUndetermined, errors.New("predict: text required")
	}

	encoded, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: encode request: %w", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "/predict")
	if err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded predictResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: decode response: %w", err)
	}
	if decoded.Error != "" {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: service error: %s", decoded.Error)
	}

	persona, ok := knowledge.ParsePersonaType(decoded.Persona)
	if !ok {
		return knowledge.PersonaUndetermined, fmt.Errorf("predict: unrecognized persona %q", decoded.Persona)
	}
	return persona, nil
}

// Health probes the classifier's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.baseURL, "/health")
	if err != nil {
		return fmt.Errorf("classifier health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("classifier health: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("classifier health: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier health: http %d", resp.StatusCode)
	}
	return nil
}
