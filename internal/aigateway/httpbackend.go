package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPBackend is the default Backend: it posts a completion request to a
// single configured endpoint and decodes a {text, cost_micros} response.
// The wire format is deliberately minimal — Manifest treats the actual AI
// provider as an external collaborator and leaves provider-
// specific request shaping to a reverse proxy in front of Endpoint.
type HTTPBackend struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPBackend constructs an HTTPBackend. A nil client uses http.DefaultClient.
func NewHTTPBackend(endpoint, apiKey string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{Endpoint: endpoint, APIKey: apiKey, Client: client}
}

type httpRequest struct {
	Prompt  string `json:"prompt"`
	Purpose string `json:"purpose"`
}

type httpResponse struct {
	Text       string `json:"text"`
	CostMicros int64  `json:"cost_micros"`
}

// Complete implements Backend.
func (b *HTTPBackend) Complete(ctx context.Context, prompt string, purpose Purpose) (Completion, error) {
	body, err := json.Marshal(httpRequest{Prompt: prompt, Purpose: string(purpose)})
	if err != nil {
		return Completion{}, fmt.Errorf("aigateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("aigateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("aigateway: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Completion{}, &RateLimitError{Err: fmt.Errorf("aigateway: backend status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("aigateway: backend status %d", resp.StatusCode)
	}

	var decoded httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Completion{}, fmt.Errorf("aigateway: decode response: %w", err)
	}
	return Completion{Text: decoded.Text, CostMicros: decoded.CostMicros}, nil
}
