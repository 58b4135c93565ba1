package listening

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"redditwatch/internal/domain/post"
)

// fakeStreamer replays a fixed set of submissions and then either fails,
// closes, or blocks until the context is cancelled
type fakeStreamer struct {
	submissions []post.Submission
	err         error
	close       bool

	gotSubreddits []string
	gotSkip       bool
}

func (f *fakeStreamer) Stream(ctx context.Context, subreddits []string, skipExisting bool) (<-chan post.Submission, <-chan error) {
	f.gotSubreddits = subreddits
	f.gotSkip = skipExisting

	out := make(chan post.Submission)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		for _, s := range f.submissions {
			select {
			case out <- s:
			case <-ctx.Done():
				return
			}
		}
		if f.err != nil {
			errs <- f.err
			return
		}
		if f.close {
			return
		}
		<-ctx.Done()
	}()

	return out, errs
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) Notify(ctx context.Context, p post.Post) error {
	return m.Called(p.Title).Error(0)
}

// lineWriter cancels the monitor after n lines so Run returns
type lineWriter struct {
	bytes.Buffer
	lines  int
	after  int
	cancel context.CancelFunc
}

func (w *lineWriter) Write(p []byte) (int, error) {
	n, err := w.Buffer.Write(p)
	w.lines += bytes.Count(p, []byte("\n"))
	if w.lines >= w.after {
		w.cancel()
	}
	return n, err
}

func sampleStream() []post.Submission {
	return []post.Submission{
		{Title: "Seating chart software?", Subreddit: "weddingplanning", Score: 3, NumComments: 1, Permalink: "/r/weddingplanning/1", Author: "a"},
		{Title: "Dress ideas", SelfText: "nothing relevant", Permalink: "/r/wedding/2"},
		{Title: "Venue question", SelfText: "How do I handle guest seating?", Permalink: "/r/wedding/3"},
	}
}

func TestMonitorRun_PrintsMatchesAsJSONLines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streamer := &fakeStreamer{submissions: sampleStream()}
	out := &lineWriter{after: 2, cancel: cancel}

	err := NewMonitor(streamer, out, zerolog.Nop()).Run(ctx, []string{"weddingplanning", "wedding"}, []string{"seating chart", "guest seating"})
	require.NoError(t, err)

	assert.Equal(t, []string{"weddingplanning", "wedding"}, streamer.gotSubreddits)
	assert.True(t, streamer.gotSkip)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first post.Post
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Seating chart software?", first.Title)
	assert.Equal(t, "https://reddit.com/r/weddingplanning/1", first.URL)
	assert.Equal(t, "a", first.Author)

	var second post.Post
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "Venue question", second.Title)
	assert.Equal(t, post.DeletedAuthor, second.Author)
}

func TestMonitorRun_FlushesEachMatch(t *testing.T) {
	var sink bytes.Buffer
	buffered := bufio.NewWriter(&sink)

	streamer := &fakeStreamer{submissions: sampleStream()[:1], close: true}

	err := NewMonitor(streamer, buffered, zerolog.Nop()).Run(context.Background(), nil, []string{"seating"})
	assert.ErrorIs(t, err, ErrStreamClosed)

	// visible without an explicit flush from the test
	assert.Contains(t, sink.String(), "Seating chart software?")
}

// syncWriter counts Sync calls the way an *os.File would receive them
type syncWriter struct {
	bytes.Buffer
	syncs int
}

func (w *syncWriter) Sync() error {
	w.syncs++
	return nil
}

func TestMonitorRun_SyncsEachMatch(t *testing.T) {
	out := &syncWriter{}
	streamer := &fakeStreamer{submissions: sampleStream(), close: true}

	err := NewMonitor(streamer, out, zerolog.Nop()).Run(context.Background(), nil, []string{"seating"})
	assert.ErrorIs(t, err, ErrStreamClosed)

	assert.Equal(t, 2, out.syncs)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestMonitorRun_DoesNotEscapeHTML(t *testing.T) {
	var out bytes.Buffer
	streamer := &fakeStreamer{
		submissions: []post.Submission{{Title: "Seating <chart> & plan", Permalink: "/r/wedding/4"}},
		close:       true,
	}

	err := NewMonitor(streamer, &out, zerolog.Nop()).Run(context.Background(), nil, []string{"seating"})
	assert.ErrorIs(t, err, ErrStreamClosed)

	assert.Contains(t, out.String(), `"title":"Seating <chart> & plan"`)
	assert.NotContains(t, out.String(), `\u003c`)
	assert.True(t, strings.HasSuffix(out.String(), "}\n"))
}

func TestMonitorRun_StreamErrorIsFatal(t *testing.T) {
	streamer := &fakeStreamer{err: errors.New("failed to decode Reddit API response")}

	err := NewMonitor(streamer, &bytes.Buffer{}, zerolog.Nop()).Run(context.Background(), nil, []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
	assert.False(t, errors.Is(err, ErrStreamClosed))
}

func TestMonitorRun_CancelReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMonitor(&fakeStreamer{}, &bytes.Buffer{}, zerolog.Nop()).Run(ctx, nil, []string{"x"})
	assert.NoError(t, err)
}

func TestMonitorRun_NotifiersReceiveMatches(t *testing.T) {
	var logs bytes.Buffer
	ok := new(mockNotifier)
	ok.On("Notify", "Seating chart software?").Return(nil)
	failing := new(mockNotifier)
	failing.On("Notify", "Seating chart software?").Return(errors.New("nats: connection closed"))

	streamer := &fakeStreamer{submissions: sampleStream()[:2], close: true}
	out := &bytes.Buffer{}

	err := NewMonitor(streamer, out, zerolog.New(&logs), ok, failing).Run(context.Background(), nil, []string{"seating chart"})

	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.Contains(t, out.String(), "Seating chart software?")
	ok.AssertExpectations(t)
	failing.AssertExpectations(t)
	assert.Contains(t, logs.String(), "nats: connection closed")
}
