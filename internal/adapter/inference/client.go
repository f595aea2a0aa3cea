package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Pair is a (premise, hypothesis) sequence pair
type Pair [2]string

// PredictRequest represents a request to the inference server
type PredictRequest struct {
	Inputs    []Pair `json:"inputs"`
	RawScores bool   `json:"raw_scores"`
	Truncate  bool   `json:"truncate"`
}

// Prediction is one class score for one pair
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// PredictResponse holds the class scores of every pair, in request order
type PredictResponse [][]Prediction

// InfoResponse describes the model served by the inference server
type InfoResponse struct {
	ModelID        string `json:"model_id"`
	ModelSHA       string `json:"model_sha,omitempty"`
	MaxInputLength int    `json:"max_input_length"`
	Version        string `json:"version,omitempty"`
}

// Client is an HTTP client for a sequence-classification inference server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new inference server client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict returns raw class logits for every pair
func (c *Client) Predict(ctx context.Context, pairs []Pair, requestID string) (PredictResponse, error) {
	reqBody := PredictRequest{
		Inputs:    pairs,
		RawScores: true,
		Truncate:  false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("inference server returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("inference server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}

// Info fetches the description of the served model
func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/info", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	var result InfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Health checks that the inference server is up
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference server not healthy: status %d", resp.StatusCode)
	}

	return nil
}
