// Package ai calls the local model server to translate page text. The server
// speaks the OpenAI chat-completions protocol, so any local runtime exposing
// that API works.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/josego85/pdf-content-search/internal/translation"
)

// Config holds the model server settings.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	// Timeout bounds one translation call, in seconds. Translation of a
	// dense page takes seconds on a local model, so this is generous but
	// finite.
	Timeout int
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Client is a translation client for the local model server. Safe for
// concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Client{
		config:  config,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

const systemPrompt = "You are a professional translator. Translate the text you receive into %s. " +
	"Preserve line breaks and paragraph structure. Output only the translation, with no commentary."

// Translate converts text into the target language. Network failures,
// timeouts and upstream overload surface as translation.TransientError so
// the queue worker can record and re-raise them for retry.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	request := ChatRequest{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "system", Content: fmt.Sprintf(systemPrompt, languageName(targetLanguage))},
			{Role: "user", Content: text},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	response, err := c.makeRequest(ctx, http.MethodPost, "/chat/completions", request)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}

	translated := strings.TrimSpace(response.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("model returned an empty translation")
	}
	return translated, nil
}

func (c *Client) makeRequest(ctx context.Context, method, path string, payload interface{}) (*ChatResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &translation.TransientError{Op: "call model server", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &translation.TransientError{Op: "read model response", Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &translation.TransientError{
			Op:  "call model server",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return &response, nil
}

// languageName renders a human-readable name for the prompt; the raw code is
// used when the tag cannot be parsed.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.English.Languages().Name(tag)
}
