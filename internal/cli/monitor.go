// internal/cli/monitor.go

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"redditwatch/internal/adapter/events"
	"redditwatch/internal/server"
	"redditwatch/internal/server/handlers"
	"redditwatch/internal/service/listening"
)

func newMonitorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor new posts in real-time",
		Long: `monitor watches new submissions and prints every post whose title or
body matches a keyword as one JSON line on stdout. It runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMonitor(cmd)
		},
	}

	addTargetFlags(cmd)
	cmd.Flags().String("nats-url", "", "also publish matches to this NATS server")
	cmd.Flags().String("nats-topic", "", "NATS topic prefix (default redditwatch)")
	cmd.Flags().String("listen", "", "serve a live WebSocket feed of matches on this address")

	return cmd
}

func (a *app) runMonitor(cmd *cobra.Command) error {
	subreddits, keywords, err := a.targets(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var notifiers []listening.Notifier
	serveErr := make(chan error, 1)

	natsCfg := a.cfg.NATS
	if v, _ := cmd.Flags().GetString("nats-url"); v != "" {
		natsCfg.URL = v
	}
	if v, _ := cmd.Flags().GetString("nats-topic"); v != "" {
		natsCfg.Topic = v
	}
	if natsCfg.URL != "" {
		nc, err := events.Connect(events.Config{
			URL:            natsCfg.URL,
			Topic:          natsCfg.Topic,
			MaxReconnects:  natsCfg.MaxReconnects,
			ReconnectWait:  natsCfg.ReconnectWait,
			ConnectTimeout: natsCfg.ConnectTimeout,
		}, a.log)
		if err != nil {
			return err
		}
		defer nc.Drain()

		notifier := events.NewNotifier(nc, natsCfg.Topic)
		a.log.Info().Str("subject", notifier.Subject()).Msg("publishing matches to NATS")
		notifiers = append(notifiers, notifier)
	}

	feedCfg := a.cfg.Feed
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		feedCfg.Addr = v
	}
	if feedCfg.Addr != "" {
		hub := handlers.NewFeedHub(a.log)
		go hub.Run(ctx)

		srv := server.NewServer(feedCfg, hub, a.log)
		go func() {
			a.log.Info().Str("addr", feedCfg.Addr).Msg("starting match feed server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("match feed server: %w", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), feedCfg.ShutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("match feed server shutdown error")
			}
		}()

		notifiers = append(notifiers, hub)
	}

	a.log.Info().
		Str("subreddits", "r/"+strings.Join(subreddits, "+")).
		Str("keywords", strings.Join(keywords, ", ")).
		Msg("monitoring")

	out := bufio.NewWriter(a.opts.Stdout)
	defer out.Flush()

	if err := listening.NewMonitor(a.client(), out, a.log, notifiers...).Run(ctx, subreddits, keywords); err != nil {
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}
