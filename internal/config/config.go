// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"redditwatch/internal/domain/post"
)

// DefaultKeywords are the seating-related market research terms
var DefaultKeywords = []string{
	"seating chart",
	"seating arrangement",
	"table assignment",
	"guest seating",
	"seating plan",
	"wedding seating",
	"event seating",
	"seat guests",
	"table layout",
}

// DefaultSubreddits are searched and monitored when none are given
var DefaultSubreddits = []string{"weddingplanning", "eventplanning", "wedding", "WeddingPhotography"}

// Config holds all application configuration
type Config struct {
	Environment string
	Log         LogConfig
	Reddit      RedditConfig
	Search      SearchConfig
	NATS        NATSConfig
	Feed        FeedConfig
}

// LogConfig holds diagnostic logging configuration
type LogConfig struct {
	Level string
}

// RedditConfig holds platform client configuration
type RedditConfig struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	PollInterval time.Duration
}

// SearchConfig holds search and monitor defaults
type SearchConfig struct {
	Subreddits   []string
	Keywords     []string
	TimeFilter   string
	Sort         string
	FetchLimit   int
	DisplayLimit int
}

// NATSConfig holds configuration for publishing monitor matches.
// An empty URL disables publishing.
type NATSConfig struct {
	URL            string
	Topic          string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// FeedConfig holds configuration for the live match feed server.
// An empty Addr disables the server.
type FeedConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Reddit: RedditConfig{
			BaseURL:      getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "redditwatch/1.0 (market research)"),
			Timeout:      getEnvAsDuration("REDDIT_TIMEOUT", 10*time.Second),
			PollInterval: getEnvAsDuration("REDDIT_POLL_INTERVAL", 15*time.Second),
		},
		Search: SearchConfig{
			Subreddits:   getEnvAsSlice("SEARCH_SUBREDDITS", DefaultSubreddits, SplitSubreddits),
			Keywords:     getEnvAsSlice("SEARCH_KEYWORDS", DefaultKeywords, SplitKeywords),
			TimeFilter:   getEnv("SEARCH_TIME_FILTER", string(post.WindowMonth)),
			Sort:         getEnv("SEARCH_SORT", string(post.SortNew)),
			FetchLimit:   getEnvAsInt("SEARCH_FETCH_LIMIT", 50),
			DisplayLimit: getEnvAsInt("SEARCH_DISPLAY_LIMIT", 20),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			Topic:          getEnv("NATS_TOPIC", "redditwatch"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Feed: FeedConfig{
			Addr:            getEnv("FEED_ADDR", ""),
			ReadTimeout:     getEnvAsDuration("FEED_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("FEED_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("FEED_SHUTDOWN_TIMEOUT", 5*time.Second),
			CorsOrigins:     getEnvAsSlice("FEED_CORS_ORIGINS", []string{"*"}, SplitKeywords),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if _, err := post.ParseTimeWindow(config.Search.TimeFilter); err != nil {
		return fmt.Errorf("SEARCH_TIME_FILTER: %w", err)
	}
	if _, err := post.ParseSortMode(config.Search.Sort); err != nil {
		return fmt.Errorf("SEARCH_SORT: %w", err)
	}
	if config.Search.FetchLimit <= 0 {
		return fmt.Errorf("SEARCH_FETCH_LIMIT must be positive, got %d", config.Search.FetchLimit)
	}
	if config.Search.DisplayLimit < 0 {
		return fmt.Errorf("SEARCH_DISPLAY_LIMIT must not be negative, got %d", config.Search.DisplayLimit)
	}
	if config.Reddit.PollInterval <= 0 {
		return fmt.Errorf("REDDIT_POLL_INTERVAL must be positive")
	}

	return nil
}

// SplitSubreddits parses a subreddit list separated by "+" or ","
func SplitSubreddits(s string) []string {
	return splitList(s, "+,")
}

// SplitKeywords parses a comma separated keyword list
func SplitKeywords(s string) []string {
	return splitList(s, ",")
}

func splitList(s, seps string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})

	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string, split func(string) []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return split(valueStr)
}
