package extractor

import (
	"time"

	"tweet-scraper/pkg/domain"
)

// Filter decides whether a tweet is kept by the pipeline.
type Filter interface {
	Keep(t *domain.Tweet) bool
}

// Apply runs all filters over a batch and returns the tweets every
// filter keeps, preserving order. The input is never mutated.
func Apply(tweets []*domain.Tweet, filters ...Filter) []*domain.Tweet {
	kept := make([]*domain.Tweet, 0, len(tweets))

	for _, t := range tweets {
		keep := true
		for _, f := range filters {
			if !f.Keep(t) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, t)
		}
	}

	return kept
}

// DateRangeFilter keeps tweets whose timestamp falls within an
// inclusive [start, end] range. Timestamps are normalized to UTC before
// comparison so offset-carrying and offset-free values compare alike.
type DateRangeFilter struct {
	start time.Time
	end   time.Time
}

// NewDateRangeFilter creates a filter for the inclusive [start, end] range.
func NewDateRangeFilter(start, end time.Time) *DateRangeFilter {
	return &DateRangeFilter{start: start.UTC(), end: end.UTC()}
}

func (f *DateRangeFilter) Keep(t *domain.Tweet) bool {
	ts := t.Date.UTC()
	return !ts.Before(f.start) && !ts.After(f.end)
}

// RetweetFilter drops reposts, keeping only original tweets.
type RetweetFilter struct{}

func (RetweetFilter) Keep(t *domain.Tweet) bool {
	return !t.IsRetweet
}
