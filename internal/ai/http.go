package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

// HTTPNarrator talks to a hosted narrative service that owns the prompts.
type HTTPNarrator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type summaryRequest struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (h HTTPNarrator) Insight(ctx context.Context, in InsightInput) (string, error) {
	return h.generate(ctx, KindInsight, in)
}

func (h HTTPNarrator) Recommend(ctx context.Context, in RecommendInput) (string, error) {
	return h.generate(ctx, KindRecommendation, in)
}

func (h HTTPNarrator) ChatReply(ctx context.Context, in ChatInput) (string, error) {
	return h.generate(ctx, KindChat, in)
}

func (h HTTPNarrator) ProfessorSummary(ctx context.Context, in SummaryInput) (string, error) {
	return h.generate(ctx, KindSummary, in)
}

func (h HTTPNarrator) generate(ctx context.Context, kind string, data any) (string, error) {
	var r summaryResponse
	if err := h.post(ctx, "/generate-ai-summary", summaryRequest{Type: kind, Data: data}, &r); err != nil {
		return "", err
	}
	if strings.TrimSpace(r.Summary) == "" {
		return "", ErrEmptyResponse
	}
	return r.Summary, nil
}

func (h HTTPNarrator) ParseIntent(ctx context.Context, query string) (models.SearchIntent, error) {
	var intent models.SearchIntent
	if err := h.post(ctx, "/search-intent", map[string]string{"query": query}, &intent); err != nil {
		return models.SearchIntent{}, err
	}
	if intent.Type == "" {
		return models.SearchIntent{}, ErrEmptyResponse
	}
	intent.Source = "ai"
	return intent, nil
}

func (h HTTPNarrator) post(ctx context.Context, path string, payload, out any) error {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(h.BaseURL, "/")+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		metrics.Observe(metrics.SourceAI, err, false)
		return fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.Observe(metrics.SourceAI, ErrQuotaExceeded, false)
		return RateLimitError{RetryAfter: retryAfterHeader(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusPaymentRequired:
		metrics.Observe(metrics.SourceAI, ErrQuotaExceeded, false)
		return ErrQuotaExceeded
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		err := fmt.Errorf("ai service error: %s", resp.Status)
		metrics.Observe(metrics.SourceAI, err, false)
		return err
	}
	metrics.Observe(metrics.SourceAI, nil, true)
	return json.NewDecoder(resp.Body).Decode(out)
}
