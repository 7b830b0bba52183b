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

// TranslationClient calls the translation inference service over HTTP.
type TranslationClient struct {
	BaseURL string
	client  *http.Client
}

// NewTranslationClient creates a translation client with a bounded per-call timeout.
func NewTranslationClient(baseURL string, timeout time.Duration) *TranslationClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &TranslationClient{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Translate sends text to the translation service.
func (c *TranslationClient) Translate(ctx context.Context, text, sourceLang string) (*TranslationResult, error) {
	body := map[string]any{
		"text":        text,
		"source_lang": sourceLang,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/translate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation service error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("translation service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result TranslationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// Healthy reports whether the translation service answers its health endpoint.
func (c *TranslationClient) Healthy(ctx context.Context) bool {
	return serviceHealthy(ctx, c.client, c.BaseURL+"/health")
}
