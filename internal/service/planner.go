package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/catalog"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
)

var ErrCourseNotFound = errors.New("course not offered")

// Planner runs the full pipeline for one course of a conversation plan.
type Planner struct {
	Catalog    catalog.Finder
	Aggregator *Aggregator
	Narrator   ai.Narrator
	Logger     zerolog.Logger
}

func (p *Planner) PlanCourse(ctx context.Context, term models.Term, courseCode, goals string) (models.CoursePlan, error) {
	q, ok := query.ParseSearchQuery(courseCode)
	if !ok {
		return models.CoursePlan{}, fmt.Errorf("%q: %w", courseCode, query.ErrUnparseable)
	}
	course, err := p.Catalog.FindCourse(ctx, term, q.Department, q.CourseNumber)
	if err != nil {
		return models.CoursePlan{}, err
	}
	if course == nil || len(course.Sections) == 0 {
		return models.CoursePlan{}, ErrCourseNotFound
	}

	records := p.Aggregator.Aggregate(ctx, *course)
	options := ProfessorOptions(records)
	plan := models.CoursePlan{Course: *course, Professors: records}

	in := ai.RecommendInput{Course: course.Code(), Goals: goals, Options: options}
	plan.Recommendation = ai.FallbackRecommendation(options)
	if p.Narrator != nil {
		text, err := p.Narrator.Recommend(ctx, in)
		if err != nil {
			p.Logger.Warn().Err(err).Str("course", course.Code()).Msg("recommendation unavailable")
		} else if text != "" {
			plan.Recommendation = text
		}
	}
	return plan, nil
}
