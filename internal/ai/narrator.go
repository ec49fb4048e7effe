package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/zotprof/backend/internal/models"
)

// PromptNarrator builds prompts locally and sends them through a Completer.
// Non-chat answers are cached by prompt text.
type PromptNarrator struct {
	completer Completer
	cache     *expirable.LRU[string, string]
}

func NewPromptNarrator(c Completer, ttl time.Duration) *PromptNarrator {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PromptNarrator{completer: c, cache: expirable.NewLRU[string, string](1024, nil, ttl)}
}

func (p *PromptNarrator) Insight(ctx context.Context, in InsightInput) (string, error) {
	return p.cached(ctx, KindInsight, insightPrompt(in))
}

func (p *PromptNarrator) Recommend(ctx context.Context, in RecommendInput) (string, error) {
	return p.cached(ctx, KindRecommendation, recommendPrompt(in))
}

func (p *PromptNarrator) ProfessorSummary(ctx context.Context, in SummaryInput) (string, error) {
	return p.cached(ctx, KindSummary, summaryPrompt(in))
}

func (p *PromptNarrator) ChatReply(ctx context.Context, in ChatInput) (string, error) {
	return p.completer.Complete(ctx, advisorSystemPrompt, chatPrompt(in), chatHistory(in.History))
}

func (p *PromptNarrator) ParseIntent(ctx context.Context, q string) (models.SearchIntent, error) {
	raw, err := p.completer.Complete(ctx, intentSystemPrompt, q, nil)
	if err != nil {
		return models.SearchIntent{}, err
	}
	var intent models.SearchIntent
	if err := json.Unmarshal([]byte(stripFences(raw)), &intent); err != nil {
		return models.SearchIntent{}, fmt.Errorf("invalid intent json: %w", err)
	}
	if intent.Type == "" {
		return models.SearchIntent{}, ErrEmptyResponse
	}
	intent.Source = "ai"
	return intent, nil
}

func (p *PromptNarrator) Purge() int {
	n := p.cache.Len()
	p.cache.Purge()
	return n
}

func (p *PromptNarrator) cached(ctx context.Context, kind, prompt string) (string, error) {
	key := kind + "\x00" + prompt
	if v, ok := p.cache.Get(key); ok {
		return v, nil
	}
	out, err := p.completer.Complete(ctx, advisorSystemPrompt, prompt, nil)
	if err != nil {
		return "", err
	}
	p.cache.Add(key, out)
	return out, nil
}

// stripFences removes a surrounding ```json block some models add.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
