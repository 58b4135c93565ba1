// internal/cli/search.go

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"redditwatch/internal/domain/post"
	"redditwatch/internal/output"
	"redditwatch/internal/service/listening"
)

func newSearchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search historical posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd)
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().StringP("time", "t", "",
		fmt.Sprintf("time filter, one of %s (default month)", post.Names(post.TimeWindows)))
	cmd.Flags().String("sort", "",
		fmt.Sprintf("sort order, one of %s (default new)", post.Names(post.SortModes)))
	cmd.Flags().IntP("limit", "l", 0, "max results to display (default 20)")
	cmd.Flags().Int("fetch-limit", 0, "max results fetched per keyword (default 50)")
	cmd.Flags().BoolP("json", "j", false, "output as JSON")
	cmd.Flags().StringP("format", "f", "", "output format: text, json or csv (default text)")
	cmd.Flags().StringP("output", "o", "", "save results to file (CSV or JSON based on extension)")

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command) error {
	subreddits, keywords, err := a.targets(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	timeFilter := a.cfg.Search.TimeFilter
	if flags.Changed("time") {
		timeFilter, _ = flags.GetString("time")
	}
	window, err := post.ParseTimeWindow(timeFilter)
	if err != nil {
		return err
	}

	sortName := a.cfg.Search.Sort
	if flags.Changed("sort") {
		sortName, _ = flags.GetString("sort")
	}
	sortMode, err := post.ParseSortMode(sortName)
	if err != nil {
		return err
	}

	displayLimit := a.cfg.Search.DisplayLimit
	if flags.Changed("limit") {
		displayLimit, _ = flags.GetInt("limit")
	}
	if displayLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	fetchLimit := a.cfg.Search.FetchLimit
	if flags.Changed("fetch-limit") {
		fetchLimit, _ = flags.GetInt("fetch-limit")
	}
	if fetchLimit <= 0 {
		return fmt.Errorf("--fetch-limit must be positive")
	}

	jsonFlag, _ := flags.GetBool("json")
	explicit, _ := flags.GetString("format")
	path, _ := flags.GetString("output")
	format, err := output.Resolve(explicit, jsonFlag, path)
	if err != nil {
		return err
	}

	a.log.Info().
		Strs("subreddits", subreddits).
		Strs("keywords", keywords).
		Str("time", string(window)).
		Str("sort", string(sortMode)).
		Msg("searching")

	results := listening.NewAggregator(a.client(), a.log).Search(cmd.Context(), listening.SearchRequest{
		Subreddits: subreddits,
		Keywords:   keywords,
		TimeWindow: window,
		Sort:       sortMode,
		Limit:      fetchLimit,
	})

	return output.NewEmitter(a.opts.Stdout, a.log).Emit(results, output.Options{
		Format: format,
		Limit:  displayLimit,
		Path:   path,
	})
}
