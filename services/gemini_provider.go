package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/maxagent/rag/models"
)

// GeminiProvider backs the Embedder and Completer contracts with the Google
// Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	embeddingModel string
}

func NewGeminiProvider(ctx context.Context, apiKey, embeddingModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, embeddingModel: embeddingModel}, nil
}

func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, p.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrEmbeddingFailure)
	}
	return resp.Embeddings[0].Values, nil
}

func (p *GeminiProvider) ModelName() string {
	return p.embeddingModel
}

func (p *GeminiProvider) Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			// Gemini takes the persona as a dedicated system instruction
			// rather than a conversation turn.
			if sys := genai.Text(m.Content); len(sys) > 0 {
				config.SystemInstruction = sys[0]
			}
		case models.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content}},
			})
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailure, err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrCompletionFailure)
	}

	var answer strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		answer.WriteString(part.Text)
	}
	return answer.String(), nil
}
