// internal/service/listening/monitor.go

package listening

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"redditwatch/internal/domain/post"
)

// ErrStreamClosed is returned when the submission stream ends on its own
var ErrStreamClosed = errors.New("submission stream closed")

// Notifier receives every matched post after it has been printed
type Notifier interface {
	// Name identifies the notifier in logs
	Name() string

	// Notify delivers a matched post
	Notify(ctx context.Context, p post.Post) error
}

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// Monitor watches the live submission stream for keyword matches
type Monitor struct {
	streamer  post.Streamer
	out       io.Writer
	notifiers []Notifier
	log       zerolog.Logger
}

// NewMonitor creates a new stream monitor writing matches to out
func NewMonitor(streamer post.Streamer, out io.Writer, log zerolog.Logger, notifiers ...Notifier) *Monitor {
	return &Monitor{
		streamer:  streamer,
		out:       out,
		notifiers: notifiers,
		log:       log,
	}
}

// Run prints every new submission matching keywords as a JSON line.
// It returns nil once ctx is cancelled and an error if the stream fails.
func (m *Monitor) Run(ctx context.Context, subreddits, keywords []string) error {
	submissions, errs := m.streamer.Stream(ctx, subreddits, true)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("submission stream: %w", err)
			}

		case s, ok := <-submissions:
			if !ok {
				return m.streamEnded(ctx, errs)
			}
			if err := m.handle(ctx, s, keywords); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) streamEnded(ctx context.Context, errs <-chan error) error {
	if ctx.Err() != nil {
		return nil
	}
	if errs != nil {
		if err, ok := <-errs; ok && err != nil {
			return fmt.Errorf("submission stream: %w", err)
		}
	}
	return ErrStreamClosed
}

func (m *Monitor) handle(ctx context.Context, s post.Submission, keywords []string) error {
	if !Relevant(s.Title, keywords) && !Relevant(s.SelfText, keywords) {
		return nil
	}

	p := post.FromSubmission(s)

	var line bytes.Buffer
	enc := json.NewEncoder(&line)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("error marshaling match: %w", err)
	}

	if _, err := m.out.Write(line.Bytes()); err != nil {
		return fmt.Errorf("error writing match: %w", err)
	}
	if err := m.flush(); err != nil {
		return fmt.Errorf("error flushing match: %w", err)
	}

	for _, n := range m.notifiers {
		if err := n.Notify(ctx, p); err != nil {
			m.log.Error().Str("notifier", n.Name()).Str("url", p.URL).Err(err).Msg("notify failed")
		}
	}

	return nil
}

func (m *Monitor) flush() error {
	switch w := m.out.(type) {
	case flusher:
		return w.Flush()
	case syncer:
		return w.Sync()
	}
	return nil
}
