// Package expo is a minimal client for the Expo push notification service.
package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultBaseURL = "https://exp.host/--/api/v2/push/send"

	// maxBatchSize is the Expo API limit on messages per request; larger
	// sends are split into sequential requests.
	maxBatchSize = 100
)

// NewClient instantiates an Expo push client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
	}
}

// Send submits the messages and returns one ticket per message, in order.
// Batches over the API limit are chunked; a transport or API failure on any
// chunk fails the whole send.
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	tickets := make([]Ticket, 0, len(messages))
	for start := 0; start < len(messages); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		batch, err := c.sendBatch(ctx, messages[start:end])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, batch...)
	}
	return tickets, nil
}

func (c *Client) sendBatch(ctx context.Context, messages []Message) ([]Ticket, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("expo: encode messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("expo: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("expo: push API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var payload sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("expo: decode response: %w", err)
	}
	return payload.Data, nil
}
