package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zotprof/backend/internal/grades"
	"github.com/zotprof/backend/internal/models"
)

// Run with -race: the clients are shared by every enrichment goroutine.
func TestAggregateWithSharedGradesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"ok":true,"data":{"sectionList":[{"instructors":[%q]}],"gradeDistribution":{"gradeACount":6,"gradeBCount":3,"gradeCCount":1}}}`,
			r.URL.Query().Get("instructor"))
	}))
	defer srv.Close()

	client := &grades.Client{BaseURL: srv.URL}
	a := &Aggregator{Grades: client, Ratings: &fakeRatings{}, Threshold: 80, Concurrency: 8, Logger: zerolog.Nop()}

	var sections []models.Section
	for i := 0; i < 8; i++ {
		sections = append(sections, section(fmt.Sprint(i), fmt.Sprintf("PROF%d, A.", i), 100, 10))
	}
	records := a.Aggregate(context.Background(), *ics33(sections...))

	require.Len(t, records, 8)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("PROF%d, A.", i), rec.Name)
		assert.True(t, rec.HasGradeData)
		assert.Equal(t, 60, rec.Grades.A)
	}
	assert.Nil(t, client.Client)
}

func TestNarratorErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	a := newAggregator(&fakeGrades{}, &fakeRatings{})
	a.Logger = zerolog.New(&buf)
	a.Narrator = failingNarrator{err: errors.New("quota")}

	rec := a.Aggregate(context.Background(), *ics33(section("1", "PATTIS, R.", 100, 10)))[0]
	assert.Contains(t, rec.Narrative, "Professor PATTIS, R. teaches this course.")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "insight failed")
}
