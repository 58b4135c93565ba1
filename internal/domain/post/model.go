// internal/domain/post/model.go

package post

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DeletedAuthor is the author value used when a submission has no author
const DeletedAuthor = "[deleted]"

// PermalinkHost is prefixed to a submission permalink to build its URL
const PermalinkHost = "https://reddit.com"

// CreatedLayout is the ISO-8601 layout used for Post.Created
const CreatedLayout = "2006-01-02T15:04:05"

// Post is a search or stream result ready for output
type Post struct {
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	URL       string `json:"url"`
	Created   string `json:"created"`
	Author    string `json:"author"`
}

// Engagement returns the ranking key of the post
func (p Post) Engagement() int {
	return p.Score + p.Comments
}

// Submission is a post as returned by the platform
type Submission struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Author      string  `json:"author"`
}

// FromSubmission builds a Post from a raw submission
func FromSubmission(s Submission) Post {
	author := s.Author
	if author == "" {
		author = DeletedAuthor
	}

	return Post{
		Title:     s.Title,
		Subreddit: s.Subreddit,
		Score:     s.Score,
		Comments:  s.NumComments,
		URL:       PermalinkHost + s.Permalink,
		Created:   time.Unix(int64(s.CreatedUTC), 0).Local().Format(CreatedLayout),
		Author:    author,
	}
}

var (
	// ErrInvalidTimeWindow is returned for an unknown time filter
	ErrInvalidTimeWindow = errors.New("invalid time window")

	// ErrInvalidSort is returned for an unknown sort mode
	ErrInvalidSort = errors.New("invalid sort mode")
)

// TimeWindow limits search results to a recent period
type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

// TimeWindows lists the accepted time windows in display order
var TimeWindows = []TimeWindow{WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll}

// ParseTimeWindow validates a time window name
func ParseTimeWindow(s string) (TimeWindow, error) {
	for _, w := range TimeWindows {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidTimeWindow, s, Names(TimeWindows))
}

// SortMode is the upstream search ordering
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortHot       SortMode = "hot"
	SortTop       SortMode = "top"
	SortNew       SortMode = "new"
	SortComments  SortMode = "comments"
)

// SortModes lists the accepted sort modes in display order
var SortModes = []SortMode{SortRelevance, SortHot, SortTop, SortNew, SortComments}

// ParseSortMode validates a sort mode name
func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidSort, s, Names(SortModes))
}

// Names joins enumeration values for help and error text
func Names[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
