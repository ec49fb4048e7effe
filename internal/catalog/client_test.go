package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zotprof/backend/internal/models"
)

const websocBody = `{"ok":true,"data":{"schools":[{"departments":[{"deptCode":"I&C SCI","courses":[
 {"deptCode":"I&C SCI","courseNumber":"H33","courseTitle":"HONORS PYTHON","sections":[]},
 {"deptCode":"I&C SCI","courseNumber":"33","courseTitle":"INTERMEDIATE PROGRAMMING","sections":[
  {"sectionCode":"35530","sectionType":"Lec","sectionNum":"A","units":"4","instructors":["PATTIS, R."],
   "meetings":[{"days":"MWF","time":"10:00-10:50a","bldg":["SSLH 100"]}],"finalExam":"Mon, Mar 16",
   "maxCapacity":"150","numCurrentlyEnrolled":{"totalEnrolled":"145","sectionEnrolled":"145"},
   "numOnWaitlist":3,"numWaitlistCap":20,"numRequested":"","status":"OPEN"},
  {"sectionCode":"35531","sectionType":"Lab","sectionNum":"1","instructors":["STAFF"],
   "meetings":[],"finalExam":{"examStatus":"NO_FINAL"},"maxCapacity":40,"numCurrentlyEnrolled":12,"status":"OPEN"}
 ]}
]}]}]}}`

func newCatalogServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestFindCoursePrefersExactMatch(t *testing.T) {
	srv, last := newCatalogServer(t, http.StatusOK, websocBody)
	c := &Client{BaseURL: srv.URL}

	course, err := c.FindCourse(context.Background(), models.Term{Quarter: "Winter", Year: "2026"}, "I&C SCI", "33")
	require.NoError(t, err)
	require.NotNil(t, course)

	assert.Equal(t, "/websoc", last.URL.Path)
	assert.Equal(t, "I&C SCI", last.URL.Query().Get("department"))
	assert.Equal(t, "Winter", last.URL.Query().Get("quarter"))
	assert.Equal(t, "2026", last.URL.Query().Get("year"))

	assert.Equal(t, "33", course.CourseNumber)
	assert.Equal(t, "I&C SCI 33", course.Code())
	require.Len(t, course.Sections, 2)

	lec := course.Sections[0]
	assert.Equal(t, 150, lec.Capacity)
	assert.Equal(t, 145, lec.Enrolled)
	assert.Equal(t, 0, lec.Requested)
	assert.Equal(t, "Mon, Mar 16", lec.FinalExam)
	assert.Equal(t, 97, EnrolledPercent(lec))
	assert.Equal(t, "MWF 10:00-10:50a", FormatMeetingTime(lec))

	lab := course.Sections[1]
	assert.Equal(t, 12, lab.Enrolled)
	assert.Empty(t, lab.FinalExam)
}

func TestFindCourseFallsBackToLooseMatch(t *testing.T) {
	srv, _ := newCatalogServer(t, http.StatusOK, websocBody)
	c := &Client{BaseURL: srv.URL}

	course, err := c.FindCourse(context.Background(), models.Term{Quarter: "Winter", Year: "2026"}, "I&C SCI", "H3")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "H33", course.CourseNumber)
}

func TestFindCourseNotFoundIsNotAnError(t *testing.T) {
	srv, _ := newCatalogServer(t, http.StatusOK, `{"ok":true,"data":{"schools":[]}}`)
	c := &Client{BaseURL: srv.URL}

	course, err := c.FindCourse(context.Background(), models.Term{Quarter: "Fall", Year: "2025"}, "MATH", "2B")
	require.NoError(t, err)
	assert.Nil(t, course)
}

func TestFindCourseHTTPErrorIsDistinguishable(t *testing.T) {
	srv, _ := newCatalogServer(t, http.StatusBadGateway, `oops`)
	c := &Client{BaseURL: srv.URL}

	course, err := c.FindCourse(context.Background(), models.Term{Quarter: "Fall", Year: "2025"}, "MATH", "2B")
	require.Error(t, err)
	assert.Nil(t, course)
	assert.True(t, errors.Is(err, ErrUpstream))

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
}

func TestFindCourseConcurrentCallsLeaveClientUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(websocBody))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			course, err := c.FindCourse(context.Background(), models.Term{Quarter: "Winter", Year: "2026"}, "I&C SCI", "33")
			assert.NoError(t, err)
			assert.NotNil(t, course)
		}()
	}
	wg.Wait()
	assert.Nil(t, c.Client)
}
