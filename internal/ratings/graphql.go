package ratings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
)

const (
	DefaultGraphQLURL = "https://www.ratemyprofessors.com/graphql"
	DefaultSchoolID   = "U2Nob29sLTEwNzQ="
	defaultAuth       = "Basic dGVzdDp0ZXN0"
	maxRatings        = 20
)

const searchTeachersQuery = `query NewSearchTeachersQuery($text: String!, $schoolID: ID!) {
  newSearch {
    teachers(query: {text: $text, schoolID: $schoolID}) {
      edges { node { id firstName lastName avgRating avgDifficulty numRatings wouldTakeAgainPercent department } }
    }
  }
}`

const teacherRatingsQuery = `query RatingsPageQuery($id: ID!, $first: Int!) {
  node(id: $id) {
    ... on Teacher {
      ratings(first: $first) {
        edges { node { comment class date helpfulRating clarityRating difficultyRating ratingTags } }
      }
    }
  }
}`

// GraphQLClient looks professors up on the public ratings site: a name
// search scoped to one school, then the most recent ratings of the first hit.
type GraphQLClient struct {
	URL      string
	SchoolID string
	Auth     string
	Client   *http.Client
	Logger   zerolog.Logger
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type teacherNode struct {
	ID                    string  `json:"id"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	AvgRating             float64 `json:"avgRating"`
	AvgDifficulty         float64 `json:"avgDifficulty"`
	NumRatings            int     `json:"numRatings"`
	WouldTakeAgainPercent float64 `json:"wouldTakeAgainPercent"`
	Department            string  `json:"department"`
}

type ratingNode struct {
	Comment          string          `json:"comment"`
	Class            string          `json:"class"`
	Date             string          `json:"date"`
	HelpfulRating    float64         `json:"helpfulRating"`
	ClarityRating    float64         `json:"clarityRating"`
	DifficultyRating float64         `json:"difficultyRating"`
	RatingTags       json.RawMessage `json:"ratingTags"`
}

func (g *GraphQLClient) Lookup(ctx context.Context, name string) (*models.RatingsProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var search struct {
		Data struct {
			NewSearch struct {
				Teachers struct {
					Edges []struct {
						Node teacherNode `json:"node"`
					} `json:"edges"`
				} `json:"teachers"`
			} `json:"newSearch"`
		} `json:"data"`
	}
	err := g.post(ctx, gqlRequest{
		Query:     searchTeachersQuery,
		Variables: map[string]any{"text": name, "schoolID": g.schoolID()},
	}, &search)
	if err != nil {
		metrics.Observe(metrics.SourceRatings, err, false)
		return nil, err
	}
	edges := search.Data.NewSearch.Teachers.Edges
	if len(edges) == 0 {
		metrics.Observe(metrics.SourceRatings, nil, false)
		return nil, nil
	}
	metrics.Observe(metrics.SourceRatings, nil, true)

	t := edges[0].Node
	profile := &models.RatingsProfile{
		FirstName:          t.FirstName,
		LastName:           t.LastName,
		Department:         t.Department,
		AvgRating:          t.AvgRating,
		AvgDifficulty:      t.AvgDifficulty,
		WouldRetakePercent: t.WouldTakeAgainPercent,
		NumRatings:         t.NumRatings,
		Source:             "graphql",
	}
	// Unknown would-take-again is reported as -1.
	if profile.WouldRetakePercent < 0 {
		profile.WouldRetakePercent = 0
	}

	reviews, err := g.reviews(ctx, t.ID)
	if err != nil {
		g.Logger.Warn().Err(err).Str("professor", name).Msg("ratings reviews unavailable")
		return profile, nil
	}
	profile.TopReviews = reviews
	profile.TopTags = rankTags(reviews, 5)
	return profile, nil
}

func (g *GraphQLClient) reviews(ctx context.Context, teacherID string) ([]models.Review, error) {
	var page struct {
		Data struct {
			Node struct {
				Ratings struct {
					Edges []struct {
						Node ratingNode `json:"node"`
					} `json:"edges"`
				} `json:"ratings"`
			} `json:"node"`
		} `json:"data"`
	}
	err := g.post(ctx, gqlRequest{
		Query:     teacherRatingsQuery,
		Variables: map[string]any{"id": teacherID, "first": maxRatings},
	}, &page)
	if err != nil {
		return nil, err
	}
	out := make([]models.Review, 0, len(page.Data.Node.Ratings.Edges))
	for _, e := range page.Data.Node.Ratings.Edges {
		n := e.Node
		helpful := n.ClarityRating
		if helpful == 0 {
			helpful = n.HelpfulRating
		}
		out = append(out, models.Review{
			Comment:    n.Comment,
			Class:      n.Class,
			Date:       n.Date,
			Helpful:    helpful,
			Difficulty: n.DifficultyRating,
			Tags:       decodeTags(n.RatingTags),
		})
	}
	return out, nil
}

func (g *GraphQLClient) post(ctx context.Context, body gqlRequest, out any) error {
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := g.URL
	if endpoint == "" {
		endpoint = DefaultGraphQLURL
	}
	auth := g.Auth
	if auth == "" {
		auth = defaultAuth
	}

	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %s", ErrUpstream, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

func (g *GraphQLClient) schoolID() string {
	if g.SchoolID == "" {
		return DefaultSchoolID
	}
	return g.SchoolID
}

// decodeTags accepts either a JSON array or the site's "a--b--c" string.
func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var joined string
	if json.Unmarshal(raw, &joined) != nil {
		return nil
	}
	for _, t := range strings.Split(joined, "--") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

// rankTags orders tags by frequency, ties broken by first appearance.
func rankTags(reviews []models.Review, limit int) []string {
	counts := map[string]int{}
	order := []string{}
	for _, r := range reviews {
		for _, t := range r.Tags {
			if _, seen := counts[t]; !seen {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
