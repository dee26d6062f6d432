package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/calistenia/catalog/internal/pipeline"
)

// newSyncCmd creates the 'sync' subcommand, which ingests exercises from the
// hosted listing API instead of crawling HTML.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync exercises from the listing API",
		Long: `Lists exercises through the hosted API, fetches each detail payload,
normalizes it, syncs media, and writes the gallery manifest. Requires a
RapidAPI key via --api-key or CATALOG_SOURCE_API_KEY.`,
		RunE: runSyncCommand,
	}
}

func runSyncCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	if app.cfg.APIKey == "" {
		return errors.New("missing API key: set --api-key or CATALOG_SOURCE_API_KEY")
	}

	run := func(ctx context.Context, r *pipeline.Runner) (pipeline.Summary, error) {
		return r.Sync(ctx)
	}
	return runPipeline(cmd.Context(), app, run)
}
