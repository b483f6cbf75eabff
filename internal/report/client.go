// Package report delivers completed triage reports to the care-coordination
// backend. Delivery is a non-essential side channel: failures are reported to
// the caller as a status flag, never as a failed request.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Report is the payload the backend's report-create route expects.
type Report struct {
	SessionID     string    `json:"session_id"`
	Filename      string    `json:"filename"`
	ExtractedData string    `json:"extracted_data"`
	Timestamp     time.Time `json:"timestamp"`
}

// Sink accepts completed reports. Implemented by Client.
type Sink interface {
	Create(ctx context.Context, r Report) error
}

// Client posts reports to the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Create posts one report to POST /report/create.
func (c *Client) Create(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/report/create", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report backend returned status %d", resp.StatusCode)
	}
	return nil
}

// IsRunning returns true if the backend answers GET /health with 200.
func (c *Client) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
