package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

type Finder interface {
	FindCourse(ctx context.Context, term models.Term, department, courseNumber string) (*models.Course, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

// flexInt decodes counters that upstream sometimes sends as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// enrolledCount is either a bare count or {totalEnrolled, sectionEnrolled}.
type enrolledCount struct {
	Total flexInt
}

func (e *enrolledCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			TotalEnrolled   flexInt `json:"totalEnrolled"`
			SectionEnrolled flexInt `json:"sectionEnrolled"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		e.Total = obj.TotalEnrolled
		if e.Total == 0 {
			e.Total = obj.SectionEnrolled
		}
		return nil
	}
	return e.Total.UnmarshalJSON(b)
}

type websocMeeting struct {
	Days string   `json:"days"`
	Time string   `json:"time"`
	Bldg []string `json:"bldg"`
}

type websocSection struct {
	SectionCode          string          `json:"sectionCode"`
	SectionType          string          `json:"sectionType"`
	SectionNum           string          `json:"sectionNum"`
	Units                string          `json:"units"`
	Instructors          []string        `json:"instructors"`
	Meetings             []websocMeeting `json:"meetings"`
	FinalExam            json.RawMessage `json:"finalExam"`
	MaxCapacity          flexInt         `json:"maxCapacity"`
	NumCurrentlyEnrolled enrolledCount   `json:"numCurrentlyEnrolled"`
	NumOnWaitlist        flexInt         `json:"numOnWaitlist"`
	NumWaitlistCap       flexInt         `json:"numWaitlistCap"`
	NumRequested         flexInt         `json:"numRequested"`
	Restrictions         string          `json:"restrictions"`
	Status               string          `json:"status"`
	SectionComment       string          `json:"sectionComment"`
}

type websocCourse struct {
	DeptCode         string          `json:"deptCode"`
	CourseNumber     string          `json:"courseNumber"`
	CourseTitle      string          `json:"courseTitle"`
	CourseComment    string          `json:"courseComment"`
	PrerequisiteLink string          `json:"prerequisiteLink"`
	Sections         []websocSection `json:"sections"`
}

type websocResponse struct {
	Data struct {
		Schools []struct {
			Departments []struct {
				DeptCode string         `json:"deptCode"`
				Courses  []websocCourse `json:"courses"`
			} `json:"departments"`
		} `json:"schools"`
	} `json:"data"`
}

// FindCourse returns nil, nil when the term has no matching course.
func (c *Client) FindCourse(ctx context.Context, term models.Term, department, courseNumber string) (*models.Course, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "https://anteaterapi.com/v2/rest"
	}

	params := url.Values{}
	params.Set("year", term.Year)
	params.Set("quarter", term.Quarter)
	params.Set("department", department)
	params.Set("courseNumber", courseNumber)
	endpoint := fmt.Sprintf("%s/websoc?%s", strings.TrimRight(baseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		metrics.Observe(metrics.SourceCatalog, err, false)
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upErr := &UpstreamError{Status: resp.StatusCode}
		metrics.Observe(metrics.SourceCatalog, upErr, false)
		return nil, upErr
	}

	var payload websocResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		upErr := &UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("decode websoc: %w", err)}
		metrics.Observe(metrics.SourceCatalog, upErr, false)
		return nil, upErr
	}

	found := matchCourse(payload, courseNumber)
	metrics.Observe(metrics.SourceCatalog, nil, found != nil)
	if found == nil {
		return nil, nil
	}
	course := toCourse(*found, term)
	return &course, nil
}

// matchCourse walks schools, departments and courses in order. An exact
// course-number match anywhere beats the first loose (substring) match.
func matchCourse(payload websocResponse, courseNumber string) *websocCourse {
	want := strings.ToUpper(strings.TrimSpace(courseNumber))
	var loose *websocCourse
	for si := range payload.Data.Schools {
		school := &payload.Data.Schools[si]
		for di := range school.Departments {
			dept := &school.Departments[di]
			for ci := range dept.Courses {
				course := &dept.Courses[ci]
				if course.DeptCode == "" {
					course.DeptCode = dept.DeptCode
				}
				got := strings.ToUpper(strings.TrimSpace(course.CourseNumber))
				if got == want {
					return course
				}
				if loose == nil && want != "" && strings.Contains(got, want) {
					loose = course
				}
			}
		}
	}
	return loose
}

func toCourse(src websocCourse, term models.Term) models.Course {
	out := models.Course{
		DepartmentCode:   src.DeptCode,
		CourseNumber:     src.CourseNumber,
		Title:            src.CourseTitle,
		Comment:          src.CourseComment,
		PrerequisiteLink: src.PrerequisiteLink,
		Term:             term,
		Sections:         make([]models.Section, 0, len(src.Sections)),
	}
	for _, s := range src.Sections {
		sec := models.Section{
			Code:         s.SectionCode,
			Type:         s.SectionType,
			Number:       s.SectionNum,
			Units:        s.Units,
			Instructors:  s.Instructors,
			FinalExam:    finalExamText(s.FinalExam),
			Capacity:     int(s.MaxCapacity),
			Enrolled:     int(s.NumCurrentlyEnrolled.Total),
			Waitlist:     int(s.NumOnWaitlist),
			WaitlistCap:  int(s.NumWaitlistCap),
			Requested:    int(s.NumRequested),
			Restrictions: s.Restrictions,
			Status:       s.Status,
			Comment:      s.SectionComment,
		}
		for _, m := range s.Meetings {
			sec.Meetings = append(sec.Meetings, models.Meeting{Days: m.Days, Time: m.Time, Buildings: m.Bldg})
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

func finalExamText(raw json.RawMessage) string {
	var s string
	if len(raw) > 0 && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}
