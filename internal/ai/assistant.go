package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

const defaultCompletionTimeout = 45 * time.Second

// Completer runs one prompt against a chat model.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, history []models.ChatMessage) (string, error)
}

// OpenAICompatCompleter speaks the /chat/completions protocol shared by most
// hosted gateways.
type OpenAICompatCompleter struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Client    *http.Client
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
	Messages  []completionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

func (a OpenAICompatCompleter) Complete(ctx context.Context, system, prompt string, history []models.ChatMessage) (string, error) {
	if strings.TrimSpace(a.BaseURL) == "" {
		return "", errors.New("ASSISTANT_BASE_URL is not set")
	}
	if strings.TrimSpace(a.Model) == "" {
		return "", errors.New("ASSISTANT_MODEL is not set")
	}

	body, err := json.Marshal(buildCompletionRequest(a.Model, a.MaxTokens, system, prompt, history))
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(a.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(a.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: defaultCompletionTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.Observe(metrics.SourceAI, err, false)
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		metrics.Observe(metrics.SourceAI, errors.New(resp.Status), false)
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			retry := retryAfterHeader(resp.Header.Get("Retry-After"))
			if retry == 0 {
				retry = extractRetryAfter(errBody)
			}
			return "", RateLimitError{RetryAfter: retry}
		case http.StatusPaymentRequired:
			return "", ErrQuotaExceeded
		}
		return "", fmt.Errorf("assistant http error: %s", resp.Status)
	}

	var res completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		metrics.Observe(metrics.SourceAI, err, false)
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Message.Content) == "" {
		metrics.Observe(metrics.SourceAI, ErrEmptyResponse, false)
		return "", ErrEmptyResponse
	}
	metrics.Observe(metrics.SourceAI, nil, true)
	return strings.TrimSpace(res.Choices[0].Message.Content), nil
}

func buildCompletionRequest(model string, maxTokens int, system, prompt string, history []models.ChatMessage) completionRequest {
	out := completionRequest{Model: model, MaxTokens: maxTokens}
	if system != "" {
		out.Messages = append(out.Messages, completionMessage{Role: models.RoleSystem, Content: system})
	}
	for _, h := range history {
		if h.Role == models.RoleSystem || strings.TrimSpace(h.Content) == "" {
			continue
		}
		out.Messages = append(out.Messages, completionMessage{Role: h.Role, Content: h.Content})
	}
	out.Messages = append(out.Messages, completionMessage{Role: models.RoleUser, Content: prompt})
	return out
}

func retryAfterHeader(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// extractRetryAfter reads a google.rpc.RetryInfo detail from an error body.
func extractRetryAfter(errBody map[string]any) time.Duration {
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		kind, _ := m["@type"].(string)
		delay, _ := m["retryDelay"].(string)
		if !strings.Contains(kind, "RetryInfo") || delay == "" {
			continue
		}
		if dur, err := time.ParseDuration(delay); err == nil {
			return dur
		}
	}
	return 0
}
