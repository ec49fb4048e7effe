package service

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/catalog"
	"github.com/zotprof/backend/internal/grades"
	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/ratings"
)

const (
	NoGradeData          = "No historical grade data"
	GradeDataUnavailable = "Grade data unavailable right now"
	UnassignedNarrative  = "An instructor has not been assigned to this section yet."
	DegradedNarrative    = "Details for this section are unavailable right now."
)

// Aggregator merges catalog sections with grades, ratings and an optional
// narrative into one display record per section.
type Aggregator struct {
	Grades      grades.Fetcher
	Ratings     ratings.Lookup
	Narrator    ai.Narrator
	Threshold   int
	Concurrency int
	Logger      zerolog.Logger
}

// Aggregate returns one record per section in catalog order. A section whose
// enrichment fails or panics is emitted as a degraded TBA record.
func (a *Aggregator) Aggregate(ctx context.Context, course models.Course) []models.ProfessorRecord {
	out := make([]models.ProfessorRecord, len(course.Sections))
	limit := a.Concurrency
	if limit <= 0 {
		limit = 8
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range course.Sections {
		section := course.Sections[i]
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					a.Logger.Error().
						Str("course", course.Code()).
						Str("section", section.Code).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("section enrichment panicked")
					metrics.DegradedSections.Inc()
					out[i] = DegradedRecord(course, section, a.Threshold)
				}
			}()
			out[i] = a.enrich(ctx, course, section)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Aggregator) enrich(ctx context.Context, course models.Course, section models.Section) models.ProfessorRecord {
	name := catalog.PrimaryInstructor(section)
	rec := baseRecord(course, section, name, a.Threshold)
	if !catalog.IsNamedInstructor(name) {
		rec.GradeNote = NoGradeData
		rec.Narrative = UnassignedNarrative
		return rec
	}
	rec.AskAILink = query.ChatLinkForProfessor(name, course.Code())

	var (
		pct        *models.GradePercentages
		gradesErr  error
		profile    *models.RatingsProfile
		ratingsErr error
	)
	if a.Grades != nil {
		var records []models.GradeRecord
		records, gradesErr = a.Grades.Fetch(ctx, name, course.CourseNumber)
		pct = grades.CalculatePercentages(records)
	}
	if a.Ratings != nil {
		profile, ratingsErr = a.Ratings.Lookup(ctx, name)
	}

	switch {
	case gradesErr != nil:
		a.Logger.Warn().Err(gradesErr).Str("professor", name).Str("course", course.Code()).Msg("grades unavailable")
		rec.GradeNote = GradeDataUnavailable
	case pct == nil:
		rec.GradeNote = NoGradeData
	default:
		rec.Grades = grades.Bars(pct)
		rec.HasGradeData = true
		rec.Percentages = pct
	}

	if ratingsErr != nil {
		a.Logger.Warn().Err(ratingsErr).Str("professor", name).Msg("ratings unavailable")
	}
	if profile != nil {
		rec.Rating = profile.AvgRating
		rec.Difficulty = profile.AvgDifficulty
		rec.WouldRetake = profile.WouldRetakePercent
		rec.ReviewCount = profile.NumRatings
		rec.Tags = ratings.TopTags(profile)
		rec.TopReview = ratings.TopReview(profile)
		rec.HasRatingsData = true
		if profile.Department != "" {
			rec.Department = profile.Department
		}
	}

	if a.Narrator != nil {
		text, err := a.Narrator.Insight(ctx, ai.InsightInput{
			Name:    name,
			Course:  course.Code(),
			Ratings: profile,
			Grades:  pct,
		})
		if err != nil || text == "" {
			if err != nil {
				a.Logger.Warn().Err(err).Str("professor", name).Str("course", course.Code()).Msg("insight failed, using template")
			}
			text = ai.FallbackInsight(name, pct)
		}
		rec.Narrative = text
	}
	return rec
}

func baseRecord(course models.Course, section models.Section, name string, threshold int) models.ProfessorRecord {
	return models.ProfessorRecord{
		Name:       name,
		Department: course.DepartmentCode,
		Section: models.SectionInfo{
			Code:            section.Code,
			Type:            section.Type,
			Time:            catalog.FormatMeetingTime(section),
			Seats:           models.Seats{Available: catalog.SeatsAvailable(section), Total: section.Capacity},
			Waitlist:        section.Waitlist,
			EnrolledPercent: catalog.EnrolledPercent(section),
			AlmostFull:      catalog.AlmostFull(section, threshold),
			Status:          section.Status,
		},
		Tags:      []string{},
		TopReview: ratings.NoReviews,
	}
}

// DegradedRecord keeps the section facts that come straight from the catalog
// and blanks everything that needed enrichment.
func DegradedRecord(course models.Course, section models.Section, threshold int) models.ProfessorRecord {
	rec := baseRecord(course, section, "TBA", threshold)
	rec.GradeNote = NoGradeData
	rec.Narrative = DegradedNarrative
	rec.Degraded = true
	return rec
}

// CourseGradeSummary averages the distributions of every distinct
// instructor that has grade data.
func CourseGradeSummary(records []models.ProfessorRecord) *models.GradePercentages {
	seen := map[string]bool{}
	var sum models.GradePercentages
	n := 0
	for _, r := range records {
		if !r.HasGradeData || r.Percentages == nil || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		p := r.Percentages
		sum.A += p.A
		sum.B += p.B
		sum.C += p.C
		sum.D += p.D
		sum.F += p.F
		sum.TotalGrades += p.TotalGrades
		n++
	}
	if n == 0 {
		return nil
	}
	avg := func(v int) int { return (v + n/2) / n }
	return &models.GradePercentages{A: avg(sum.A), B: avg(sum.B), C: avg(sum.C), D: avg(sum.D), F: avg(sum.F), TotalGrades: sum.TotalGrades}
}

func ProfessorOptions(records []models.ProfessorRecord) []models.ProfessorOption {
	out := make([]models.ProfessorOption, 0, len(records))
	for _, r := range records {
		if r.Degraded {
			continue
		}
		out = append(out, models.ProfessorOption{
			Name:        r.Name,
			SectionCode: r.Section.Code,
			MeetingTime: r.Section.Time,
			Seats:       fmt.Sprintf("%d/%d seats", r.Section.Seats.Available, r.Section.Seats.Total),
			Grades:      r.Percentages,
			Rating:      r.Rating,
			Difficulty:  r.Difficulty,
			WouldRetake: r.WouldRetake,
			Tags:        r.Tags,
		})
	}
	return out
}
