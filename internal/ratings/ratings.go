package ratings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/zotprof/backend/internal/models"
)

var ErrUpstream = errors.New("ratings upstream error")

const NoReviews = "No reviews available"

// Lookup resolves a professor name to a ratings profile. A professor with no
// data is reported as nil, nil.
type Lookup interface {
	Lookup(ctx context.Context, name string) (*models.RatingsProfile, error)
}

func TopTags(p *models.RatingsProfile) []string {
	if p == nil || len(p.TopTags) == 0 {
		return []string{}
	}
	n := len(p.TopTags)
	if n > 5 {
		n = 5
	}
	return append([]string(nil), p.TopTags[:n]...)
}

func TopReview(p *models.RatingsProfile) string {
	if p == nil {
		return NoReviews
	}
	for _, r := range p.TopReviews {
		if r.Comment != "" {
			return r.Comment
		}
	}
	return NoReviews
}

func Summary(p *models.RatingsProfile) string {
	if p == nil {
		return "No rating data available"
	}
	return fmt.Sprintf("%s/5 (%d reviews) | %s/5 difficulty | %s%% would retake",
		num(p.AvgRating), p.NumRatings, num(p.AvgDifficulty), num(p.WouldRetakePercent))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
