package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"unicode/utf8"

	"google.golang.org/genai"
)

// LLMClient is the scoring collaborator: one structured request, one JSON body back.
type LLMClient interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatTurn is one message of a recruiter conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// ChatModel continues a conversation under a system prompt. Turns are oldest
// first and end with the message to answer.
type ChatModel interface {
	Chat(ctx context.Context, systemPrompt string, turns []ChatTurn) (string, error)
}

// LLMProvider is a client that can both score and chat.
type LLMProvider interface {
	LLMClient
	ChatModel
}

type GeminiService interface {
	LLMProvider
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(ctx context.Context, apiKey, modelName, embedModel string) (GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	text = truncateUTF8(text, maxEmbeddingBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

const maxEmbeddingBytes = 40000

// truncateUTF8 cuts s to at most maxBytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// GenerateJSON implements LLMClient.
func (g *geminiService) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temperature := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userPrompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", classifyGeminiError(err)
	}

	if resp == nil {
		return "", &ScoringError{Kind: KindMalformedResponse, Cause: errors.New("nil response from gemini")}
	}

	text := resp.Text()
	if text == "" {
		return "", &ScoringError{Kind: KindMalformedResponse, Cause: errors.New("no text content in gemini response")}
	}

	return text, nil
}

// Chat implements ChatModel. Assistant turns are sent with the model role.
func (g *geminiService) Chat(ctx context.Context, systemPrompt string, turns []ChatTurn) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := "user"
		if turn.Role == ChatRoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}

	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1000,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		log.Printf("❌ Gemini chat error: %v", err)
		return "", classifyGeminiError(err)
	}
	if resp == nil || resp.Text() == "" {
		return "", &ScoringError{Kind: KindMalformedResponse, Cause: errors.New("no text content in gemini response")}
	}

	return resp.Text(), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ScoringError{Kind: classifyStatus(apiErr.Code), StatusCode: apiErr.Code, Cause: err}
	}
	return &ScoringError{Kind: KindUnavailable, Cause: err}
}
