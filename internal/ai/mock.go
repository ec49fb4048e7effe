package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/utils"
)

// MockNarrator produces stable canned text seeded by a hash of the input so
// local runs and tests do not need an AI backend.
type MockNarrator struct{}

var (
	mockStyles = []string{"clear, well-structured lectures", "challenging but fair exams", "a heavy but rewarding workload", "lots of office-hour support"}
	mockTips   = []string{"Start the homework early.", "Go to discussion sections.", "Use office hours before exams.", "Review lecture notes weekly."}
)

func (MockNarrator) Insight(_ context.Context, in InsightInput) (string, error) {
	return fmt.Sprintf("Students describe %s as having %s. %s", in.Name,
		utils.Pick(mockStyles, in.Name, in.Course), utils.Pick(mockTips, "tip", in.Name, in.Course)), nil
}

func (MockNarrator) Recommend(_ context.Context, in RecommendInput) (string, error) {
	if len(in.Options) == 0 {
		return fmt.Sprintf("No instructors are listed for %s yet.", in.Course), nil
	}
	best := in.Options[0]
	for _, o := range in.Options[1:] {
		if o.Rating > best.Rating {
			best = o
		}
	}
	return fmt.Sprintf("For %s I'd go with %s (%s, %s). %s", in.Course, best.Name, best.MeetingTime, best.Seats, utils.Pick(mockTips, in.Course, in.Goals)), nil
}

func (MockNarrator) ChatReply(_ context.Context, in ChatInput) (string, error) {
	return fmt.Sprintf("Got it! %s Anything else you'd like to know?", utils.Pick(mockTips, in.Message)), nil
}

func (MockNarrator) ProfessorSummary(_ context.Context, in SummaryInput) (string, error) {
	return fmt.Sprintf("%s is known for %s. %s", in.Name, utils.Pick(mockStyles, in.Name), utils.Pick(mockTips, "summary", in.Name)), nil
}

func (MockNarrator) ParseIntent(_ context.Context, q string) (models.SearchIntent, error) {
	return RegexIntent(q), nil
}

// RegexIntent is the deterministic intent used whenever no AI parser answers.
func RegexIntent(q string) models.SearchIntent {
	if parsed, ok := query.ParseSearchQuery(q); ok {
		intent := models.SearchIntent{
			Type:         "class",
			Department:   parsed.Department,
			CourseNumber: parsed.CourseNumber,
			Intent:       "search",
			Source:       "regex",
		}
		if t, ok := query.ParseTerm(q); ok {
			intent.Term = t.String()
		}
		return intent
	}
	return models.SearchIntent{
		Type:          "professor",
		ProfessorName: strings.TrimSpace(q),
		Intent:        "search",
		Source:        "regex",
	}
}
