package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/pipeline"
	"github.com/calistenia/catalog/internal/progress"
	"github.com/calistenia/catalog/internal/progress/sinks"
)

// newCrawlCmd creates the 'crawl' subcommand, which ingests exercises from
// the public HTML pages discovered via the sitemap.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Crawl exercise pages from the sitemap",
		Long: `Fetches the sitemap, filters exercise pages to the configured equipment
scope, extracts and normalizes each exercise, syncs its media, and writes
the gallery manifest.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	run := func(ctx context.Context, r *pipeline.Runner) (pipeline.Summary, error) {
		return r.Crawl(ctx)
	}
	return runPipeline(cmd.Context(), app, run)
}

// runPipeline wires the progress hub around one pipeline run and logs the
// final tallies.
func runPipeline(ctx context.Context, app *appState, run func(context.Context, *pipeline.Runner) (pipeline.Summary, error)) error {
	counter := sinks.NewCounterSink()
	hub := progress.NewHub(progress.Config{Logger: app.logger},
		sinks.NewLogSink(app.logger.Named("progress")),
		counter,
	)
	closeHub := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			app.logger.Warn("progress hub close failed", zap.Error(err))
		}
	}
	defer closeHub()

	runner, err := pipeline.NewRunner(app.cfg, hub, app.logger)
	if err != nil {
		return err
	}

	summary, err := run(ctx, runner)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("pipeline run: %w", err)
	}

	// Flush the hub before reading tallies so late events are counted.
	closeHub()
	totals := counter.Totals()
	app.logger.Info("run complete",
		zap.Int("total", summary.Total),
		zap.Int("ok", totals.Done),
		zap.Int("skipped", totals.Skipped),
		zap.Int("failed", totals.Failed),
		zap.String("manifest", summary.ManifestPath),
	)
	return nil
}
