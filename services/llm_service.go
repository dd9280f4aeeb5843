package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LLMService talks to an OpenAI-compatible chat-completions endpoint.
type LLMService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewLLMService(baseURL, apiKey, model string) *LLMService {
	return &LLMService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		// Per-call deadlines come from the caller's context; this is a
		// transport-level backstop only.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// ContentPart is one block of a multimodal user turn.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

func ImagePart(dataURI string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, []ContentPart for user
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteJSON sends one system instruction and one user turn built from
// parts, requesting a JSON-object response, and returns the raw message
// content. No retries; a failed call surfaces directly.
func (s *LLMService) CompleteJSON(ctx context.Context, system string, parts []ContentPart, maxTokens int) (string, error) {
	payload := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: parts},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		MaxTokens:      maxTokens,
		Temperature:    0.1,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call model API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API error %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to parse model response JSON: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("model response contained no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
