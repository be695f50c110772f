package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/eventlink-api/pkg/config"
)

const maxErrorBody = 4 << 10

// ErrNoOutput is returned when the provider answered but produced no text.
var ErrNoOutput = errors.New("openai: response contained no output text")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

// StructuredRequest asks the model for JSON conforming to Schema.
type StructuredRequest struct {
	APIKey       string
	Instructions string
	Input        string
	SchemaName   string
	Schema       map[string]interface{}
}

// Client talks to the Responses API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewClient constructs a client bounded by the configured timeout.
func NewClient(cfg config.OpenAIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		baseURL: baseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textFormat struct {
	Type   string                 `json:"type"`
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
	Strict bool                   `json:"strict"`
}

type responseRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text  struct {
		Format textFormat `json:"format"`
	} `json:"text"`
}

type responseBody struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one request and returns the first output text. It never retries.
func (c *Client) Complete(ctx context.Context, req StructuredRequest) (string, error) {
	payload := responseRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Input},
		},
	}
	payload.Text.Format = textFormat{Type: "json_schema", Name: req.SchemaName, Schema: req.Schema, Strict: true}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var decoded responseBody
		if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil {
			apiErr.Message = decoded.Error.Message
		}
		return "", apiErr
	}

	var decoded responseBody
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoOutput, err)
	}

	for _, item := range decoded.Output {
		if item.Type != "" && item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" || content.Type == "" {
				return content.Text, nil
			}
		}
	}
	return "", ErrNoOutput
}
