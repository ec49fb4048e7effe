package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/catalog"
	"github.com/zotprof/backend/internal/chat"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/ratings"
	"github.com/zotprof/backend/internal/service"
	"github.com/zotprof/backend/internal/session"
)

type stubCatalog struct {
	course *models.Course
	err    error
}

func (s stubCatalog) FindCourse(context.Context, models.Term, string, string) (*models.Course, error) {
	return s.course, s.err
}

type stubGrades struct{}

func (stubGrades) Fetch(_ context.Context, instructor, _ string) ([]models.GradeRecord, error) {
	if instructor == "" {
		return nil, nil
	}
	return []models.GradeRecord{{Instructor: instructor, A: 50, B: 30, C: 20}}, nil
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge() int { return p.n }

func ics33() *models.Course {
	return &models.Course{
		DepartmentCode: "I&C SCI",
		CourseNumber:   "33",
		Title:          "Intermediate Programming",
		Term:           models.Term{Quarter: "Winter", Year: "2026"},
		Sections: []models.Section{{
			Code:        "35500",
			Type:        "Lec",
			Instructors: []string{"PATTIS, R."},
			Meetings:    []models.Meeting{{Days: "MWF", Time: "10:00-10:50a"}},
			Capacity:    150,
			Enrolled:    145,
		}},
	}
}

func newTestHandler(t *testing.T, cat catalog.Finder) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	table, err := ratings.LoadStaticTable("")
	require.NoError(t, err)

	logger := zerolog.Nop()
	narrator := ai.WithFallback(ai.MockNarrator{}, logger)
	agg := &service.Aggregator{Grades: stubGrades{}, Ratings: table, Narrator: narrator, Threshold: 80, Logger: logger}
	h := &Handler{
		Search: &service.SearchService{
			Catalog:     cat,
			Grades:      stubGrades{},
			Ratings:     table,
			Narrator:    narrator,
			Aggregator:  agg,
			DefaultTerm: models.Term{Quarter: "Winter", Year: "2026"},
			Logger:      logger,
		},
		Intent: ai.IntentWithFallback{Logger: logger},
		Chat: &chat.Engine{
			Extractor: query.RegexExtractor{},
			Planner:   &service.Planner{Catalog: cat, Aggregator: &service.Aggregator{Grades: stubGrades{}, Ratings: table, Threshold: 80, Logger: logger}, Narrator: narrator, Logger: logger},
			Narrator:  narrator,
			Logger:    logger,
		},
		Sessions:  session.NewMemoryStore(10, 0),
		Caches:    map[string]Purger{"ratings": &countingPurger{n: 3}},
		Validator: validator.New(),
		Logger:    logger,
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/search", h.SearchCourses)
	r.GET("/api/professors/:name", h.ProfessorDetails)
	r.GET("/api/grades", h.Grades)
	r.POST("/api/search-intent", h.SearchIntent)
	r.POST("/api/chat/sessions", h.CreateSession)
	r.GET("/api/chat/sessions/:id", h.GetSession)
	r.DELETE("/api/chat/sessions/:id", h.DeleteSession)
	r.POST("/api/chat/sessions/:id/messages", h.PostMessage)
	r.POST("/api/admin/cache/purge", h.PurgeCaches)
	return h, r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthz(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"session_store":"memory"`)
}

func TestSearchClass(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{course: ics33()})
	w := do(r, http.MethodGet, "/api/search?q=ICS+33", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res service.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Professors, 1)
	rec := res.Professors[0]
	assert.Equal(t, 97, rec.Section.EnrolledPercent)
	assert.True(t, rec.Section.AlmostFull)
	assert.True(t, rec.HasRatingsData)
	assert.Equal(t, "1 sections available", res.Message)
}

func TestSearchNotOffered(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodGet, "/api/search?q=ICS+33&term=Spring+2026", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.NotFound)
	assert.Contains(t, res.Message, "not offered in Spring 2026")
}

func TestSearchErrors(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{err: &catalog.UpstreamError{Status: 503}})

	w := do(r, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = do(r, http.MethodGet, "/api/search?q=hello", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNPARSEABLE_QUERY", errorCode(t, w))

	w = do(r, http.MethodGet, "/api/search?q=ICS+33&type=room", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/search?q=ICS+33&term=someday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/search?q=ICS+33&term=Winter+2026", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UPSTREAM_ERROR", errorCode(t, w))
}

func TestProfessorDetails(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodGet, "/api/professors/Richard%20Pattis", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.ProfessorProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.True(t, p.Found)
	assert.NotEmpty(t, p.Summary)

	w = do(r, http.MethodGet, "/api/professors/Nobody%20Known", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.False(t, p.Found)
}

func TestGrades(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodGet, "/api/grades?instructor=PATTIS&courseNumber=33", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a_percent":50`)

	w = do(r, http.MethodGet, "/api/grades?instructor=PATTIS", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchIntentFallsBackToRegex(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodPost, "/api/search-intent", IntentRequest{Query: "ICS 33 winter 2026"})
	require.Equal(t, http.StatusOK, w.Code)
	var intent models.SearchIntent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &intent))
	assert.Equal(t, "class", intent.Type)
	assert.Equal(t, "regex", intent.Source)

	w = do(r, http.MethodPost, "/api/search-intent", IntentRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatSessionLifecycle(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{course: ics33()})

	w := do(r, http.MethodPost, "/api/chat/sessions?context=ICS+33", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, models.StageCollectQuarter, created.Stage)
	require.Len(t, created.Messages, 1)
	assert.Contains(t, created.Messages[0].Content, "searching for ICS 33")

	base := "/api/chat/sessions/" + created.SessionID
	steps := []struct {
		msg   string
		stage models.Stage
	}{
		{"Winter 2026", models.StageCollectCourses},
		{"ICS 33", models.StageCollectGoals},
		{"High GPA", models.StageDone},
	}
	for _, step := range steps {
		w = do(r, http.MethodPost, base+"/messages", MessageRequest{Message: step.msg})
		require.Equal(t, http.StatusOK, w.Code, step.msg)
		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, step.stage, resp.Stage, step.msg)
	}

	w = do(r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state models.ConversationState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, []string{"ICS 33"}, state.Courses)
	assert.Contains(t, state.CollectedData, "ICS 33")

	w = do(r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestChatSessionErrors(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})

	w := do(r, http.MethodGet, "/api/chat/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/chat/sessions/00000000-0000-0000-0000-000000000000/messages", MessageRequest{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/chat/sessions", CreateSessionRequest{Professor: "Pattis", Course: "ICS 33"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Contains(t, created.Messages[0].Content, "Pattis for ICS 33")

	w = do(r, http.MethodPost, "/api/chat/sessions/"+created.SessionID+"/messages", MessageRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type brokenStore struct{ session.Store }

func (brokenStore) Ping(context.Context) error { return errors.New("down") }
func (brokenStore) Kind() string               { return "broken" }
func (brokenStore) Save(context.Context, models.ConversationState) error {
	return errors.New("down")
}

func TestSessionStoreFailures(t *testing.T) {
	h, r := newTestHandler(t, stubCatalog{})
	h.Sessions = brokenStore{}

	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SESSION_STORE_ERROR", errorCode(t, w))

	w = do(r, http.MethodPost, "/api/chat/sessions", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPurgeCaches(t *testing.T) {
	_, r := newTestHandler(t, stubCatalog{})
	w := do(r, http.MethodPost, "/api/admin/cache/purge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"purged":{"ratings":3}}`, w.Body.String())
}
