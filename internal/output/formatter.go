// internal/output/formatter.go

package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"redditwatch/internal/domain/post"
)

// Format selects how results are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrInvalidFormat is returned for an unknown output format
var ErrInvalidFormat = errors.New("invalid output format")

// CSVHeader is the fixed CSV column order
var CSVHeader = []string{"title", "subreddit", "score", "comments", "url", "created", "author"}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (want text, json or csv)", ErrInvalidFormat, s)
}

// Resolve picks the output format from the command line: the json flag and
// a .json path force JSON, a .csv path forces CSV, otherwise explicit is used
func Resolve(explicit string, jsonFlag bool, path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case jsonFlag, strings.HasSuffix(lower, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case explicit == "":
		return FormatText, nil
	}
	return ParseFormat(explicit)
}

// Options controls Emit
type Options struct {
	Format Format
	// Limit keeps only the leading records when positive
	Limit int
	// Path writes to a file instead of stdout when set
	Path string
}

// Emitter writes rendered results to stdout or a file
type Emitter struct {
	stdout io.Writer
	log    zerolog.Logger
}

// NewEmitter creates a new emitter
func NewEmitter(stdout io.Writer, log zerolog.Logger) *Emitter {
	return &Emitter{
		stdout: stdout,
		log:    log,
	}
}

// Emit truncates posts to opts.Limit and renders them. When opts.Path is
// set the output goes to that file and a confirmation is logged.
func (e *Emitter) Emit(posts []post.Post, opts Options) error {
	posts = Truncate(posts, opts.Limit)

	if opts.Path == "" {
		return Render(e.stdout, posts, opts.Format)
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	if err := Render(f, posts, opts.Format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}

	// confirmation must survive any level filter
	e.log.WithLevel(zerolog.NoLevel).
		Int("count", len(posts)).
		Str("path", opts.Path).
		Msgf("Saved %d results to %s", len(posts), opts.Path)
	return nil
}

// Truncate returns at most limit leading posts; limit <= 0 keeps all
func Truncate(posts []post.Post, limit int) []post.Post {
	if limit > 0 && len(posts) > limit {
		return posts[:limit]
	}
	return posts
}

// Render writes posts to w in the given format
func Render(w io.Writer, posts []post.Post, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, posts)
	case FormatCSV:
		return renderCSV(w, posts)
	case FormatText, "":
		return renderText(w, posts)
	}
	return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}

func renderJSON(w io.Writer, posts []post.Post) error {
	if posts == nil {
		posts = []post.Post{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}

func renderCSV(w io.Writer, posts []post.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, p := range posts {
		row := []string{
			p.Title,
			p.Subreddit,
			strconv.Itoa(p.Score),
			strconv.Itoa(p.Comments),
			p.URL,
			p.Created,
			p.Author,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func renderText(w io.Writer, posts []post.Post) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Found %d relevant posts:\n\n", len(posts))
	for _, p := range posts {
		fmt.Fprintf(&b, "[%d upvotes, %d comments] r/%s\n", p.Score, p.Comments, p.Subreddit)
		fmt.Fprintf(&b, "  Title: %s\n", p.Title)
		fmt.Fprintf(&b, "  URL: %s\n", p.URL)
		fmt.Fprintf(&b, "  Author: u/%s\n", p.Author)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
