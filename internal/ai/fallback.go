package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

const FallbackChat = "I'm having trouble connecting right now. Could you try rephrasing that?"

func FallbackInsight(name string, grades *models.GradePercentages) string {
	if grades == nil {
		return fmt.Sprintf("Professor %s teaches this course. Limited data available.", name)
	}
	return fmt.Sprintf("Professor %s teaches this course. Historical grade distribution shows %d%% A's and %d%% B's.", name, grades.A, grades.B)
}

func FallbackRecommendation(options []models.ProfessorOption) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", o.Name, o.MeetingTime, o.Seats))
	}
	return "I'm having trouble analyzing the data right now. But here's what I can see: " + strings.Join(parts, ", ")
}

func FallbackSummary(name string, p *models.RatingsProfile) string {
	if p == nil {
		return fmt.Sprintf("We couldn't generate a summary for %s right now, and no rating data is available yet.", name)
	}
	return fmt.Sprintf("%s is rated %.1f/5 across %d reviews, with a difficulty of %.1f/5. %.0f%% of students would take them again.",
		name, p.AvgRating, p.NumRatings, p.AvgDifficulty, p.WouldRetakePercent)
}

var errNoNarrator = errors.New("no narrator configured")

// fallbackNarrator never fails: any error or empty answer from the wrapped
// narrator is logged and replaced with templated text.
type fallbackNarrator struct {
	next   Narrator
	logger zerolog.Logger
}

func WithFallback(n Narrator, logger zerolog.Logger) Narrator {
	return fallbackNarrator{next: n, logger: logger}
}

func (f fallbackNarrator) Insight(ctx context.Context, in InsightInput) (string, error) {
	out, err := "", errNoNarrator
	if f.next != nil {
		out, err = f.next.Insight(ctx, in)
	}
	if f.accept(KindInsight, in.Name, out, err) {
		return out, nil
	}
	return FallbackInsight(in.Name, in.Grades), nil
}

func (f fallbackNarrator) Recommend(ctx context.Context, in RecommendInput) (string, error) {
	out, err := "", errNoNarrator
	if f.next != nil {
		out, err = f.next.Recommend(ctx, in)
	}
	if f.accept(KindRecommendation, in.Course, out, err) {
		return out, nil
	}
	return FallbackRecommendation(in.Options), nil
}

func (f fallbackNarrator) ChatReply(ctx context.Context, in ChatInput) (string, error) {
	out, err := "", errNoNarrator
	if f.next != nil {
		out, err = f.next.ChatReply(ctx, in)
	}
	if f.accept(KindChat, "", out, err) {
		return out, nil
	}
	return FallbackChat, nil
}

func (f fallbackNarrator) ProfessorSummary(ctx context.Context, in SummaryInput) (string, error) {
	out, err := "", errNoNarrator
	if f.next != nil {
		out, err = f.next.ProfessorSummary(ctx, in)
	}
	if f.accept(KindSummary, in.Name, out, err) {
		return out, nil
	}
	return FallbackSummary(in.Name, in.Ratings), nil
}

func (f fallbackNarrator) accept(kind, subject, out string, err error) bool {
	if err == nil && strings.TrimSpace(out) != "" {
		return true
	}
	metrics.AIFallbacks.WithLabelValues(kind).Inc()
	ev := f.logger.Warn().Str("kind", kind)
	if subject != "" {
		ev = ev.Str("subject", subject)
	}
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("ai narrative unavailable, using fallback")
	return false
}

// IntentWithFallback answers from the regex parser when the AI parser fails.
type IntentWithFallback struct {
	Parser IntentParser
	Logger zerolog.Logger
}

func (i IntentWithFallback) ParseIntent(ctx context.Context, q string) (models.SearchIntent, error) {
	if i.Parser != nil {
		intent, err := i.Parser.ParseIntent(ctx, q)
		if err == nil {
			return intent, nil
		}
		metrics.AIFallbacks.WithLabelValues("search-intent").Inc()
		i.Logger.Warn().Err(err).Str("query", q).Msg("intent parsing failed, using regex parser")
	}
	return RegexIntent(q), nil
}
