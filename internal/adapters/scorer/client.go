// Package scorer calls the external flood model over HTTP.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/minarah/internal/core/domain"
)

// Client implements ports.FloodScorer against a JSON endpoint that accepts
// the prediction features and answers {flood, severity, confidence}.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type scoreResponse struct {
	Flood      bool    `json:"flood"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

// Score posts in to <baseURL>/predict.
func (c *Client) Score(ctx context.Context, in domain.FloodPredictionInput) (domain.FloodPrediction, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return domain.FloodPrediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return domain.FloodPrediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.FloodPrediction{}, fmt.Errorf("scorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.FloodPrediction{}, fmt.Errorf("scorer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.FloodPrediction{}, fmt.Errorf("decode scorer response: %w", err)
	}
	return domain.FloodPrediction{Flood: out.Flood, Severity: out.Severity, Confidence: out.Confidence}, nil
}
