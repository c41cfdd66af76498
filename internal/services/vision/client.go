package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8601"
	defaultHTTPTimeout = 60 * time.Second
)

// Detection is a single labeled region found in the drawing.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	// Box holds pixel coordinates as [x1, y1, x2, y2].
	Box [4]float64 `json:"box"`
}

// Result aggregates the detector response for one drawing.
type Result struct {
	Detections []Detection
	// AnnotatedPath points at the boxed copy of the drawing written next to
	// the original, or is empty when the service returned no annotation.
	AnnotatedPath string
}

// Service defines the detector operations used by the pipeline.
type Service interface {
	Detect(ctx context.Context, imagePath string) (Result, error)
	Health(ctx context.Context) error
}

// Client calls the detection service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the detector client.
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

// NewClient constructs a detector client.
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

type detectResponse struct {
	Detections     []Detection `json:"detections"`
	AnnotatedImage string      `json:"annotated_image"`
	Error          string      `json:"error"`
}

// Detect uploads the drawing and returns the labeled regions. When the
// service includes an annotated image it is written alongside the original
// with an "_annotated" suffix.
func (c *Client) Detect(ctx context.Context, imagePath string) (Result, error) {
	var empty Result

	file, err := os.Open(imagePath)
	if err != nil {
		return empty, fmt.Errorf("detect: open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return empty, fmt.Errorf("detect: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return empty, fmt.Errorf("detect: copy image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return empty, fmt.Errorf("detect: finalize form: %w", err)
	}

	endpoint, err := url.JoinPath(c.baseURL, "/detect")
	if err != nil {
		return empty, fmt.Errorf("detect: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return empty, fmt.Errorf("detect: request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("detect: request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("detect: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("detect: http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded detectResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return empty, fmt.Errorf("detect: decode response: %w", err)
	}
	if decoded.Error != "" {
		return empty, fmt.Errorf("detect: service error: %s", decoded.Error)
	}

	result := Result{Detections: decoded.Detections}
	if decoded.AnnotatedImage != "" {
		annotatedPath, err := writeAnnotated(imagePath, decoded.AnnotatedImage)
		if err != nil {
			return empty, err
		}
		result.AnnotatedPath = annotatedPath
	}
	return result, nil
}

// Health probes the detector's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.baseURL, "/health")
	if err != nil {
		return fmt.Errorf("detector health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("detector health: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("detector health: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector health: http %d", resp.StatusCode)
	}
	return nil
}

func writeAnnotated(imagePath, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("detect: decode annotated image: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("detect: annotated image empty")
	}
	ext := filepath.Ext(imagePath)
	annotatedPath := strings.TrimSuffix(imagePath, ext) + "_annotated" + ext
	if err := os.WriteFile(annotatedPath, data, 0o644); err != nil {
		return "", fmt.Errorf("detect: write annotated image: %w", err)
	}
	return annotatedPath, nil
}
