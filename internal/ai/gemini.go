package ai

import (
	"context"
	"strings"

	genai "google.golang.org/genai"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiCompleter calls the Gemini API directly through the official client.
type GeminiCompleter struct {
	cli   *genai.Client
	model string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCompleter{cli: cli, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string, history []models.ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, h := range history {
		role := string(genai.RoleUser)
		if h.Role == models.RoleAssistant {
			role = string(genai.RoleModel)
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: h.Content}}})
	}
	contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{{Text: prompt}}})

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}}}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		metrics.Observe(metrics.SourceAI, err, false)
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		metrics.Observe(metrics.SourceAI, ErrEmptyResponse, false)
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	metrics.Observe(metrics.SourceAI, nil, true)
	return b.String(), nil
}
