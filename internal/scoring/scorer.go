// Package scoring talks to the externally supplied and versioned scoring
// model. The model is opaque to this service: a feature vector goes in, a
// probability distribution over the candidate universe comes out.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Scorer produces a probability distribution over 1-based candidate ids from
// a feature vector.
type Scorer interface {
	Score(ctx context.Context, vector []float64) (map[int]float64, error)
}

// Client communicates with the model server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given model server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

// scoreResponse mirrors the JSON returned by POST /score: the predict_proba
// row for the single submitted vector, class index 0 first.
type scoreResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// Score posts the vector and converts the returned probability array into a
// distribution keyed by 1-based candidate id.
func (c *Client) Score(ctx context.Context, vector []float64) (map[int]float64, error) {
	body, err := json.Marshal(scoreRequest{Features: vector})
	if err != nil {
		return nil, fmt.Errorf("marshalling score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding score response: %w", err)
	}
	if len(sr.Probabilities) == 0 {
		return nil, fmt.Errorf("model server returned an empty distribution")
	}

	dist := make(map[int]float64, len(sr.Probabilities))
	for i, p := range sr.Probabilities {
		dist[i+1] = p
	}
	return dist, nil
}

// IsRunning returns true if the model server responds to GET /health with 200.
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
