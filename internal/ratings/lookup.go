package ratings

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/utils"
)

// Fallback asks each source in order and returns the first profile found.
// A failing source is logged and skipped; the error is only returned when
// every source failed.
type Fallback struct {
	Sources []Lookup
	Logger  zerolog.Logger
}

func (f Fallback) Lookup(ctx context.Context, name string) (*models.RatingsProfile, error) {
	var lastErr error
	failed := 0
	for _, src := range f.Sources {
		p, err := src.Lookup(ctx, name)
		if err != nil {
			failed++
			lastErr = err
			f.Logger.Warn().Err(err).Str("professor", name).Msg("ratings source failed")
			continue
		}
		if p != nil {
			return p, nil
		}
	}
	if failed > 0 && failed == len(f.Sources) {
		return nil, lastErr
	}
	return nil, nil
}

type cached struct {
	profile *models.RatingsProfile
}

// Cached memoizes another Lookup, including misses. Errors are not cached.
type Cached struct {
	next  Lookup
	cache *expirable.LRU[string, cached]
}

func NewCached(next Lookup, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 512
	}
	return &Cached{next: next, cache: expirable.NewLRU[string, cached](size, nil, ttl)}
}

func (c *Cached) Lookup(ctx context.Context, name string) (*models.RatingsProfile, error) {
	key := utils.NormalizeName(name)
	if hit, ok := c.cache.Get(key); ok {
		return copyProfile(hit.profile), nil
	}
	p, err := c.next.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cached{profile: copyProfile(p)})
	return p, nil
}

func (c *Cached) Purge() int {
	n := c.cache.Len()
	c.cache.Purge()
	return n
}

func copyProfile(p *models.RatingsProfile) *models.RatingsProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.TopTags = append([]string(nil), p.TopTags...)
	out.TopReviews = append([]models.Review(nil), p.TopReviews...)
	return &out
}
