package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphQLClientLookup(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body gqlRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Basic dGVzdDp0ZXN0", r.Header.Get("Authorization"))

		if strings.Contains(body.Query, "NewSearchTeachersQuery") {
			assert.Equal(t, "Pattis", body.Variables["text"])
			assert.Equal(t, DefaultSchoolID, body.Variables["schoolID"])
			_, _ = w.Write([]byte(`{"data":{"newSearch":{"teachers":{"edges":[{"node":{
				"id":"VGVhY2hlci0x","firstName":"Richard","lastName":"Pattis","avgRating":4.2,
				"avgDifficulty":3.8,"numRatings":156,"wouldTakeAgainPercent":-1,"department":"Computer Science"}}]}}}}`))
			return
		}
		assert.Equal(t, "VGVhY2hlci0x", body.Variables["id"])
		_, _ = w.Write([]byte(`{"data":{"node":{"ratings":{"edges":[
			{"node":{"comment":"Great","class":"ICS33","date":"2024","clarityRating":5,"difficultyRating":4,"ratingTags":"Tough grader--Clear lectures"}},
			{"node":{"comment":"Hard","class":"ICS33","date":"2023","helpfulRating":3,"difficultyRating":5,"ratingTags":["Clear lectures"]}}
		]}}}}`))
	}))
	defer srv.Close()

	c := &GraphQLClient{URL: srv.URL, Logger: zerolog.Nop()}
	p, err := c.Lookup(context.Background(), "Pattis")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Richard Pattis", p.FullName())
	assert.Equal(t, 0.0, p.WouldRetakePercent)
	require.Len(t, p.TopReviews, 2)
	assert.Equal(t, 5.0, p.TopReviews[0].Helpful)
	assert.Equal(t, 3.0, p.TopReviews[1].Helpful)
	assert.Equal(t, []string{"Clear lectures", "Tough grader"}, p.TopTags)
}

func TestGraphQLClientNoTeacher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"newSearch":{"teachers":{"edges":[]}}}}`))
	}))
	defer srv.Close()

	p, err := (&GraphQLClient{URL: srv.URL}).Lookup(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestGraphQLClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&GraphQLClient{URL: srv.URL}).Lookup(context.Background(), "Pattis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestGraphQLClientConcurrentLookups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body gqlRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Query, "NewSearchTeachersQuery") {
			_, _ = w.Write([]byte(`{"data":{"newSearch":{"teachers":{"edges":[{"node":{"id":"T1","firstName":"Alex","lastName":"Thornton","avgRating":4.5,"numRatings":10}}]}}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"node":{"ratings":{"edges":[]}}}}`))
	}))
	defer srv.Close()

	c := &GraphQLClient{URL: srv.URL, Logger: zerolog.Nop()}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Lookup(context.Background(), "Thornton")
			assert.NoError(t, err)
			assert.NotNil(t, p)
		}()
	}
	wg.Wait()
	assert.Nil(t, c.Client)
}
