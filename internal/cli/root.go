// internal/cli/root.go

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"redditwatch/internal/adapter/reddit"
	"redditwatch/internal/config"
	"redditwatch/internal/domain/post"
	"redditwatch/pkg/logger"
)

// ClientFactory builds the platform client from configuration
type ClientFactory func(cfg config.RedditConfig, log zerolog.Logger) post.Client

// Options wires the command tree to its environment
type Options struct {
	Stdout    io.Writer
	Stderr    io.Writer
	NewClient ClientFactory
}

// app carries state shared by subcommands after the root pre-run
type app struct {
	opts Options
	cfg  config.Config
	log  zerolog.Logger
}

func (a *app) client() post.Client {
	return a.opts.NewClient(a.cfg.Reddit, a.log)
}

// DefaultClient is the Reddit JSON API client
func DefaultClient(cfg config.RedditConfig, log zerolog.Logger) post.Client {
	return reddit.NewClient(reddit.Config{
		BaseURL:      cfg.BaseURL,
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Timeout,
		PollInterval: cfg.PollInterval,
	}, log)
}

// NewRootCommand builds the redditwatch command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.NewClient == nil {
		opts.NewClient = DefaultClient
	}

	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "redditwatch",
		Short: "Reddit market research tool",
		Long: `redditwatch searches subreddits for posts matching market research
keywords, ranks them by engagement, and prints them as text, JSON or CSV.
The monitor command watches new submissions and prints matches live.`,
		Example: `  redditwatch search
  redditwatch search --keywords "AI tool,productivity app"
  redditwatch search --subreddits "startups+SaaS" --time week
  redditwatch search --json --limit 10
  redditwatch search --output results.csv
  redditwatch monitor`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadDotEnv("")
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg
			a.log = logger.WithRunID(logger.New(opts.Stderr, cfg.Environment, cfg.Log.Level), uuid.NewString())
			if len(loaded) > 0 {
				a.log.Debug().Strs("files", loaded).Msg("loaded env files")
			}
			return nil
		},
	}
	root.Version = "0.1.0"
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	root.AddCommand(newSearchCommand(a))
	root.AddCommand(newMonitorCommand(a))

	return root
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(Options{})
	if len(os.Args) < 2 {
		root.Help()
		return 1
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subreddits", "s", "",
		fmt.Sprintf("subreddits, plus-separated (default %q)", strings.Join(config.DefaultSubreddits, "+")))
	cmd.Flags().StringP("keywords", "k", "",
		"keywords, comma-separated (default seating-related terms)")
}

// targets resolves the subreddit and keyword flags against configuration
func (a *app) targets(cmd *cobra.Command) ([]string, []string, error) {
	subreddits := a.cfg.Search.Subreddits
	if cmd.Flags().Changed("subreddits") {
		v, _ := cmd.Flags().GetString("subreddits")
		subreddits = config.SplitSubreddits(v)
	}

	keywords := a.cfg.Search.Keywords
	if cmd.Flags().Changed("keywords") {
		v, _ := cmd.Flags().GetString("keywords")
		keywords = config.SplitKeywords(v)
	}

	if len(subreddits) == 0 {
		return nil, nil, fmt.Errorf("at least one subreddit is required")
	}
	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("at least one keyword is required")
	}
	return subreddits, keywords, nil
}
