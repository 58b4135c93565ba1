// internal/service/listening/aggregator.go

package listening

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"redditwatch/internal/domain/post"
)

// SearchRequest describes a batch of keyword searches
type SearchRequest struct {
	Subreddits []string
	Keywords   []string
	TimeWindow post.TimeWindow
	Sort       post.SortMode
	Limit      int
}

// Aggregator runs one search per keyword and merges the results
type Aggregator struct {
	searcher post.Searcher
	log      zerolog.Logger
}

// NewAggregator creates a new search aggregator
func NewAggregator(searcher post.Searcher, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		searcher: searcher,
		log:      log,
	}
}

// Search queries every keyword in turn and returns the deduplicated
// results ranked by engagement. A failing keyword is logged and skipped.
func (a *Aggregator) Search(ctx context.Context, req SearchRequest) []post.Post {
	var results []post.Post

	for _, keyword := range req.Keywords {
		if ctx.Err() != nil {
			a.log.Warn().Err(ctx.Err()).Msg("search interrupted")
			break
		}

		submissions, err := a.searcher.Search(ctx, post.SearchQuery{
			Subreddits: req.Subreddits,
			Keyword:    keyword,
			TimeWindow: req.TimeWindow,
			Sort:       req.Sort,
			Limit:      req.Limit,
		})
		if err != nil {
			a.log.Error().Str("keyword", keyword).Err(err).Msg("keyword search failed")
			continue
		}

		for _, s := range submissions {
			results = append(results, post.FromSubmission(s))
		}
	}

	return Rank(Dedupe(results))
}

// Dedupe drops posts whose URL was already seen, keeping the first
func Dedupe(posts []post.Post) []post.Post {
	seen := make(map[string]struct{}, len(posts))
	unique := make([]post.Post, 0, len(posts))

	for _, p := range posts {
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		unique = append(unique, p)
	}

	return unique
}

// Rank sorts posts by descending engagement, keeping the relative order of ties
func Rank(posts []post.Post) []post.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Engagement() > posts[j].Engagement()
	})
	return posts
}
