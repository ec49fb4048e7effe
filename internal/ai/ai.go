package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zotprof/backend/internal/models"
)

const (
	KindInsight        = "professor-insight"
	KindRecommendation = "course-recommendation"
	KindChat           = "chat-response"
	KindSummary        = "professor-summary"
)

var (
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	ErrEmptyResponse = errors.New("empty ai response")
)

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}

type InsightInput struct {
	Name    string                   `json:"name"`
	Course  string                   `json:"course"`
	Ratings *models.RatingsProfile   `json:"rmpData"`
	Grades  *models.GradePercentages `json:"grades"`
}

type RecommendInput struct {
	Course  string                   `json:"course"`
	Goals   string                   `json:"goals"`
	Options []models.ProfessorOption `json:"professors"`
}

type ChatInput struct {
	History []models.ChatMessage `json:"messages"`
	Message string               `json:"userMessage"`
}

type SummaryInput struct {
	Name       string                   `json:"name"`
	Department string                   `json:"department"`
	Ratings    *models.RatingsProfile   `json:"rmpData"`
	Grades     *models.GradePercentages `json:"grades"`
}

// Narrator turns structured course data into short advisory text.
type Narrator interface {
	Insight(ctx context.Context, in InsightInput) (string, error)
	Recommend(ctx context.Context, in RecommendInput) (string, error)
	ChatReply(ctx context.Context, in ChatInput) (string, error)
	ProfessorSummary(ctx context.Context, in SummaryInput) (string, error)
}

type IntentParser interface {
	ParseIntent(ctx context.Context, query string) (models.SearchIntent, error)
}
