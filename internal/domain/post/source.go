// internal/domain/post/source.go

package post

import (
	"context"
)

// SearchQuery describes a single keyword search
type SearchQuery struct {
	Subreddits []string
	Keyword    string
	TimeWindow TimeWindow
	Sort       SortMode
	Limit      int
}

// Searcher runs keyword searches against the platform
type Searcher interface {
	// Search returns the submissions matching a single query
	Search(ctx context.Context, q SearchQuery) ([]Submission, error)
}

// Streamer delivers new submissions as they are posted
type Streamer interface {
	// Stream starts delivering submissions from the given subreddits.
	// When skipExisting is set, submissions already present when the stream
	// starts are not delivered. Both channels are closed when the stream ends.
	Stream(ctx context.Context, subreddits []string, skipExisting bool) (<-chan Submission, <-chan error)
}

// Client is the full platform surface used by the tool
type Client interface {
	Searcher
	Streamer
}
