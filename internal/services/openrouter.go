package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterClient talks to an OpenAI-compatible chat completions endpoint.
type openRouterClient struct {
	apiKey   string
	baseURL  string
	model    string
	appTitle string
	referer  string
	httpDo   *http.Client
}

func NewOpenRouterClient(apiKey, baseURL, model, appTitle, referer string) LLMProvider {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &openRouterClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		model:    model,
		appTitle: appTitle,
		referer:  referer,
		httpDo: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionsRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionsResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GenerateJSON implements LLMClient.
func (c *openRouterClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, chatCompletionsRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.3,
		MaxTokens:      2000,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
}

// Chat implements ChatModel.
func (c *openRouterClient) Chat(ctx context.Context, systemPrompt string, turns []ChatTurn) (string, error) {
	messages := make([]chatMessage, 0, len(turns)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range turns {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}

	return c.complete(ctx, chatCompletionsRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
}

func (c *openRouterClient) complete(ctx context.Context, req chatCompletionsRequest) (string, error) {
	if c.apiKey == "" {
		return "", &ScoringError{Kind: KindUnauthorized, Cause: errors.New("openrouter api key is empty")}
	}
	req.Model = c.model

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.appTitle != "" {
		httpReq.Header.Set("X-Title", c.appTitle)
	}

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", &ScoringError{Kind: KindUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ScoringError{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("openrouter http %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("invalid completion envelope: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &ScoringError{Kind: KindMalformedResponse, Cause: errors.New("no choices returned by model")}
	}

	return out.Choices[0].Message.Content, nil
}
