// internal/adapter/reddit/client.go

package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"redditwatch/internal/domain/post"
)

// maxPageSize is the largest page the listing endpoints return
const maxPageSize = 100

// Listing represents the structure of a Reddit listing response
type Listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data post.Submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Config contains configuration for the Reddit client
type Config struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	PollInterval time.Duration
}

// Client handles interactions with the Reddit API
type Client struct {
	HTTPClient   *http.Client
	BaseURL      string
	UserAgent    string
	PollInterval time.Duration
	log          zerolog.Logger
}

var _ post.Client = (*Client)(nil)

// NewClient creates a new Reddit API client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "redditwatch/1.0"
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:    cfg.UserAgent,
		PollInterval: cfg.PollInterval,
		log:          log.With().Str("component", "reddit").Logger(),
	}
}

// Search runs a keyword search restricted to the query's subreddits,
// following pagination until Limit submissions are collected
func (c *Client) Search(ctx context.Context, q post.SearchQuery) ([]post.Submission, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}

	var (
		results []post.Submission
		after   string
	)
	for len(results) < limit {
		params := url.Values{}
		params.Set("q", q.Keyword)
		params.Set("restrict_sr", "1")
		params.Set("limit", strconv.Itoa(min(limit-len(results), maxPageSize)))
		if q.Sort != "" {
			params.Set("sort", string(q.Sort))
		}
		if q.TimeWindow != "" {
			params.Set("t", string(q.TimeWindow))
		}
		if after != "" {
			params.Set("after", after)
		}

		listing, err := c.get(ctx, subredditPath(q.Subreddits, "search.json"), params)
		if err != nil {
			return nil, err
		}

		for _, child := range listing.Data.Children {
			results = append(results, child.Data)
		}

		after = listing.Data.After
		if after == "" || len(listing.Data.Children) == 0 {
			break
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	c.log.Debug().
		Str("keyword", q.Keyword).
		Int("count", len(results)).
		Msg("received search results")
	return results, nil
}

// Stream polls the newest submissions of the given subreddits and
// delivers each one once, oldest first. The stream ends when ctx is
// cancelled or a poll fails; a failure is sent on the error channel first.
func (c *Client) Stream(ctx context.Context, subreddits []string, skipExisting bool) (<-chan post.Submission, <-chan error) {
	out := make(chan post.Submission)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		seen := newSeenSet(10 * maxPageSize)
		path := subredditPath(subreddits, "new.json")
		params := url.Values{}
		params.Set("limit", strconv.Itoa(maxPageSize))

		ticker := time.NewTicker(c.PollInterval)
		defer ticker.Stop()

		first := true
		for {
			listing, err := c.get(ctx, path, params)
			if err != nil {
				if ctx.Err() == nil {
					errs <- err
				}
				return
			}

			children := listing.Data.Children
			for i := len(children) - 1; i >= 0; i-- {
				s := children[i].Data
				if !seen.add(s.Permalink) {
					continue
				}
				if first && skipExisting {
					continue
				}

				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
			first = false

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out, errs
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*Listing, error) {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	c.log.Debug().Str("url", u).Msg("making request to Reddit API")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Reddit throttles requests without a descriptive User-Agent
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Reddit API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit API returned status code %d", resp.StatusCode)
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode Reddit API response: %w", err)
	}

	return &listing, nil
}

func subredditPath(subreddits []string, endpoint string) string {
	name := strings.Join(subreddits, "+")
	if name == "" {
		name = "all"
	}
	return "/r/" + name + "/" + endpoint
}

// seenSet remembers the most recent permalinks up to a fixed capacity
type seenSet struct {
	keys  map[string]struct{}
	order []string
	cap   int
}

func newSeenSet(capacity int) *seenSet {
	return &seenSet{
		keys: make(map[string]struct{}, capacity),
		cap:  capacity,
	}
}

// add records key and reports whether it was new
func (s *seenSet) add(key string) bool {
	if _, ok := s.keys[key]; ok {
		return false
	}
	if len(s.order) == s.cap {
		delete(s.keys, s.order[0])
		s.order = s.order[1:]
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}
