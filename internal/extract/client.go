// Package extract calls the text-extraction service that owns PDF parsing.
// This module never opens PDF binaries itself.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client fetches the extracted text of one document page.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("extractor base URL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type pageTextResponse struct {
	Text string `json:"text"`
}

// ExtractPageText returns the page's text. An empty string means the page
// has no extractable content.
func (c *Client) ExtractPageText(ctx context.Context, documentID string, page int) (string, error) {
	url := fmt.Sprintf("%s/documents/%s/pages/%d/text", c.baseURL, documentID, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed pageTextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode extraction response: %w", err)
	}
	return parsed.Text, nil
}
