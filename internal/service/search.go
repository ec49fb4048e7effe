package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/catalog"
	"github.com/zotprof/backend/internal/grades"
	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/ratings"
)

const (
	SearchClass     = "class"
	SearchProfessor = "professor"
)

var ErrInvalidTerm = errors.New("term must look like \"Winter 2026\"")

type SearchResult struct {
	Query        string                   `json:"query"`
	Type         string                   `json:"type"`
	Term         models.Term              `json:"term"`
	Course       *models.Course           `json:"course,omitempty"`
	Professors   []models.ProfessorRecord `json:"professors"`
	Professor    *models.ProfessorProfile `json:"professor,omitempty"`
	GradeSummary *models.GradePercentages `json:"grade_summary"`
	Message      string                   `json:"message"`
	NotFound     bool                     `json:"not_found"`
	ChatLink     string                   `json:"chat_link"`
}

type SearchService struct {
	Catalog     catalog.Finder
	Grades      grades.Fetcher
	Ratings     ratings.Lookup
	Narrator    ai.Narrator
	Aggregator  *Aggregator
	DefaultTerm models.Term
	Logger      zerolog.Logger
}

func (s *SearchService) Search(ctx context.Context, q, typ, termText string) (SearchResult, error) {
	start := time.Now()
	q = strings.TrimSpace(q)
	if typ == "" {
		typ = SearchClass
	}
	defer func() {
		metrics.SearchDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
	}()

	if typ == SearchProfessor {
		profile := s.Professor(ctx, q)
		res := SearchResult{
			Query:      q,
			Type:       typ,
			Professors: []models.ProfessorRecord{},
			Professor:  &profile,
			NotFound:   !profile.Found,
			ChatLink:   query.ChatLinkForSearch(q),
		}
		if !profile.Found {
			res.Message = fmt.Sprintf("No rating data found for %q. Try a full name like Richard Pattis.", q)
		}
		return res, nil
	}

	parsed, ok := query.ParseSearchQuery(q)
	if !ok {
		return SearchResult{}, query.ErrUnparseable
	}
	term, defaulted, err := s.resolveTerm(termText)
	if err != nil {
		return SearchResult{}, err
	}

	course, term, err := s.findCourse(ctx, term, defaulted, parsed)
	if err != nil {
		return SearchResult{}, err
	}

	res := SearchResult{
		Query:      q,
		Type:       typ,
		Term:       term,
		Professors: []models.ProfessorRecord{},
		ChatLink:   query.ChatLinkForSearch(q),
	}
	if !offered(course) {
		res.NotFound = true
		res.Message = fmt.Sprintf("%s is not offered in %s.", parsed, term)
		return res, nil
	}

	res.Course = course
	res.Professors = s.Aggregator.Aggregate(ctx, *course)
	res.GradeSummary = CourseGradeSummary(res.Professors)
	res.Message = fmt.Sprintf("%d sections available", len(course.Sections))
	return res, nil
}

func (s *SearchService) resolveTerm(termText string) (models.Term, bool, error) {
	if strings.TrimSpace(termText) == "" {
		return s.DefaultTerm, true, nil
	}
	t, ok := query.ParseTerm(termText)
	if !ok {
		return models.Term{}, false, ErrInvalidTerm
	}
	return t, false, nil
}

// findCourse tries the following quarter once, and only when the caller did
// not pick the term explicitly.
func (s *SearchService) findCourse(ctx context.Context, term models.Term, defaulted bool, q query.SearchQuery) (*models.Course, models.Term, error) {
	course, err := s.Catalog.FindCourse(ctx, term, q.Department, q.CourseNumber)
	if !defaulted || (err == nil && offered(course)) {
		return course, term, err
	}

	alt := term.Next()
	altCourse, altErr := s.Catalog.FindCourse(ctx, alt, q.Department, q.CourseNumber)
	if altErr == nil && offered(altCourse) {
		s.Logger.Info().Str("course", q.String()).Str("term", term.String()).Str("alternate", alt.String()).Msg("course found in alternate term")
		return altCourse, alt, nil
	}
	if altErr != nil {
		s.Logger.Warn().Err(altErr).Str("course", q.String()).Str("term", alt.String()).Msg("alternate term lookup failed")
	}
	return course, term, err
}

func offered(c *models.Course) bool {
	return c != nil && len(c.Sections) > 0
}

// Professor builds a profile page. Ratings failures degrade to "not found".
func (s *SearchService) Professor(ctx context.Context, name string) models.ProfessorProfile {
	var profile *models.RatingsProfile
	if s.Ratings != nil {
		p, err := s.Ratings.Lookup(ctx, name)
		if err != nil {
			s.Logger.Warn().Err(err).Str("professor", name).Msg("ratings unavailable")
		}
		profile = p
	}

	out := models.ProfessorProfile{
		Name:    name,
		Ratings: profile,
		Tags:    ratings.TopTags(profile),
		Review:  ratings.TopReview(profile),
		Found:   profile != nil,
	}
	if profile != nil && profile.FullName() != "" {
		out.Name = profile.FullName()
	}
	if !out.Found {
		out.Summary = ratings.Summary(nil)
		return out
	}

	out.Summary = ai.FallbackSummary(out.Name, profile)
	if s.Narrator != nil {
		text, err := s.Narrator.ProfessorSummary(ctx, ai.SummaryInput{
			Name:       out.Name,
			Department: profile.Department,
			Ratings:    profile,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			out.Summary = text
		}
	}
	return out
}

// GradeSummary returns aggregated percentages, or nil when there is no data.
func (s *SearchService) GradeSummary(ctx context.Context, instructor, courseNumber string) (*models.GradePercentages, error) {
	records, err := s.Grades.Fetch(ctx, instructor, courseNumber)
	if err != nil {
		return nil, err
	}
	return grades.CalculatePercentages(records), nil
}
