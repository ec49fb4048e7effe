package service

import (
	"context"
	"sync"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/models"
)

type fakeCatalog struct {
	mu      sync.Mutex
	courses map[string]*models.Course
	errs    map[string]error
	calls   []string
}

func (f *fakeCatalog) FindCourse(_ context.Context, term models.Term, dept, num string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, term.String()+"|"+dept+"|"+num)
	if err := f.errs[term.String()]; err != nil {
		return nil, err
	}
	return f.courses[term.String()], nil
}

type fakeGrades struct {
	mu      sync.Mutex
	records map[string][]models.GradeRecord
	err     error
	calls   []string
}

func (f *fakeGrades) Fetch(_ context.Context, instructor, _ string) ([]models.GradeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, instructor)
	if f.err != nil {
		return nil, f.err
	}
	return f.records[instructor], nil
}

type fakeRatings struct {
	mu       sync.Mutex
	profiles map[string]*models.RatingsProfile
	panicOn  string
	calls    []string
}

func (f *fakeRatings) Lookup(_ context.Context, name string) (*models.RatingsProfile, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if name == f.panicOn {
		panic("boom")
	}
	return f.profiles[name], nil
}

type failingNarrator struct{ err error }

func (f failingNarrator) Insight(context.Context, ai.InsightInput) (string, error) { return "", f.err }
func (f failingNarrator) Recommend(context.Context, ai.RecommendInput) (string, error) {
	return "", f.err
}
func (f failingNarrator) ChatReply(context.Context, ai.ChatInput) (string, error) { return "", f.err }
func (f failingNarrator) ProfessorSummary(context.Context, ai.SummaryInput) (string, error) {
	return "", f.err
}

func section(code, instructor string, capacity, enrolled int) models.Section {
	return models.Section{
		Code:        code,
		Type:        "Lec",
		Instructors: []string{instructor},
		Meetings:    []models.Meeting{{Days: "MWF", Time: "10:00-10:50a"}},
		Capacity:    capacity,
		Enrolled:    enrolled,
		Status:      "OPEN",
	}
}

func ics33(sections ...models.Section) *models.Course {
	return &models.Course{DepartmentCode: "I&C SCI", CourseNumber: "33", Title: "INTERMEDIATE PROGRAMMING", Sections: sections}
}
