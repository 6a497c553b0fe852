package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultPrompt is the question asked about every crop image.
const DefaultPrompt = "What do you see?"

// OllamaCaptioner asks a local Ollama-compatible server to describe images
// through its chat API.
type OllamaCaptioner struct {
	baseURL string
	model   string
	prompt  string
	client  *http.Client
}

// NewOllamaCaptioner creates a captioner against an Ollama server, e.g.
// http://localhost:11434 with model "bakllava".
func NewOllamaCaptioner(baseURL, model string) *OllamaCaptioner {
	return &OllamaCaptioner{
		baseURL: baseURL,
		model:   model,
		prompt:  DefaultPrompt,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// WithPrompt overrides the question sent with each image.
func (c *OllamaCaptioner) WithPrompt(prompt string) *OllamaCaptioner {
	if prompt != "" {
		c.prompt = prompt
	}
	return c
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (c *OllamaCaptioner) WithHTTPClient(client *http.Client) *OllamaCaptioner {
	if client != nil {
		c.client = client
	}
	return c
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Caption implements Captioner by sending the image to the chat endpoint.
func (c *OllamaCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: c.prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(data)},
		}},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request returned %s", resp.Status)
	}

	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("model error: %s", out.Error)
	}
	return out.Message.Content, nil
}
