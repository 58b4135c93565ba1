package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditwatch/internal/domain/post"
)

func samplePosts() []post.Post {
	return []post.Post{
		{
			Title:     "Test Post 1",
			Subreddit: "weddingplanning",
			Score:     100,
			Comments:  50,
			URL:       "https://reddit.com/r/weddingplanning/test1",
			Created:   "2025-01-01T12:00:00",
			Author:    "testuser1",
		},
		{
			Title:     "Test Post 2",
			Subreddit: "eventplanning",
			Score:     200,
			Comments:  75,
			URL:       "https://reddit.com/r/eventplanning/test2",
			Created:   "2025-01-02T12:00:00",
			Author:    post.DeletedAuthor,
		},
	}
}

func TestEmit_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewEmitter(&out, zerolog.Nop()).Emit(samplePosts(), Options{Format: FormatJSON}))

	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	require.Len(t, parsed, 2)
	assert.Equal(t, "Test Post 1", parsed[0]["title"])
	assert.Equal(t, float64(100), parsed[0]["score"])
	assert.Equal(t, float64(50), parsed[0]["comments"])
	assert.Len(t, parsed[0], 7)
	assert.True(t, strings.HasPrefix(out.String(), "[\n  {\n    \"title\""))
}

func TestEmit_JSONEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewEmitter(&out, zerolog.Nop()).Emit(nil, Options{Format: FormatJSON}))
	assert.Equal(t, "[]\n", out.String())
}

func TestEmit_Limit(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewEmitter(&out, zerolog.Nop()).Emit(samplePosts(), Options{Format: FormatJSON, Limit: 1}))

	var parsed []post.Post
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, samplePosts()[0], parsed[0])
}

func TestEmit_CSVToFile(t *testing.T) {
	var logs bytes.Buffer
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "test_results.csv")

	require.NoError(t, NewEmitter(&out, zerolog.New(&logs)).Emit(samplePosts(), Options{Format: FormatCSV, Path: path}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "title,subreddit,score,comments,url,created,author\n"))

	rows, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Test Post 1", "weddingplanning", "100", "50",
		"https://reddit.com/r/weddingplanning/test1", "2025-01-01T12:00:00", "testuser1",
	}, rows[1])
	assert.Equal(t, "[deleted]", rows[2][6])

	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Saved 2 results to "+path)
}

func TestEmit_ConfirmationIgnoresLevel(t *testing.T) {
	var logs bytes.Buffer
	path := filepath.Join(t.TempDir(), "results.json")
	log := zerolog.New(&logs).Level(zerolog.ErrorLevel)

	require.NoError(t, NewEmitter(&bytes.Buffer{}, log).Emit(samplePosts(), Options{Format: FormatJSON, Path: path}))

	assert.Contains(t, logs.String(), "Saved 2 results to "+path)
}

func TestEmit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_results.json")

	require.NoError(t, NewEmitter(&bytes.Buffer{}, zerolog.Nop()).Emit(samplePosts(), Options{Format: FormatJSON, Path: path}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var parsed []post.Post
	require.NoError(t, json.Unmarshal(content, &parsed))
	assert.Equal(t, samplePosts(), parsed)
}

func TestEmit_FileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	err := NewEmitter(&bytes.Buffer{}, zerolog.Nop()).Emit(samplePosts(), Options{Format: FormatJSON, Path: path})
	assert.Error(t, err)
}

func TestEmit_Text(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewEmitter(&out, zerolog.Nop()).Emit(samplePosts(), Options{Format: FormatText}))

	want := "Found 2 relevant posts:\n\n" +
		"[100 upvotes, 50 comments] r/weddingplanning\n" +
		"  Title: Test Post 1\n" +
		"  URL: https://reddit.com/r/weddingplanning/test1\n" +
		"  Author: u/testuser1\n\n" +
		"[200 upvotes, 75 comments] r/eventplanning\n" +
		"  Title: Test Post 2\n" +
		"  URL: https://reddit.com/r/eventplanning/test2\n" +
		"  Author: u/[deleted]\n\n"
	assert.Equal(t, want, out.String())
}

func TestRender_CSVQuotesFields(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Render(&out, []post.Post{{Title: `Seating, "help"`, Author: "x"}}, FormatCSV))
	assert.Contains(t, out.String(), `"Seating, ""help"""`)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, samplePosts(), Format("xml"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		jsonFlag bool
		path     string
		want     Format
	}{
		{"default", "", false, "", FormatText},
		{"json flag", "", true, "", FormatJSON},
		{"json path", "", false, "out.JSON", FormatJSON},
		{"csv path", "", false, "out.csv", FormatCSV},
		{"json flag wins over csv path", "", true, "out.csv", FormatJSON},
		{"explicit csv", "csv", false, "", FormatCSV},
		{"explicit text to txt file", "text", false, "out.txt", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.explicit, tt.jsonFlag, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Resolve("yaml", false, "")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
