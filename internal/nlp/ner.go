package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NERClient calls the entity-recognition inference service over HTTP.
type NERClient struct {
	BaseURL string
	client  *http.Client
}

// NewNERClient creates a NER client with a bounded per-call timeout.
func NewNERClient(baseURL string, timeout time.Duration) *NERClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &NERClient{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ExtractEntities sends text to the NER service.
func (c *NERClient) ExtractEntities(ctx context.Context, text string) (*ExtractionResult, error) {
	body := map[string]any{"text": text}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/analyze-entities", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NER service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("NER service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Healthy reports whether the NER service answers its health endpoint.
func (c *NERClient) Healthy(ctx context.Context) bool {
	return serviceHealthy(ctx, c.client, c.BaseURL+"/health")
}

func serviceHealthy(ctx context.Context, client *http.Client, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
