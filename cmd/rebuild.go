package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/manifest"
	"github.com/calistenia/catalog/internal/store"
)

// newRebuildCmd creates the 'rebuild' subcommand, which regenerates the
// manifest from what is already on disk without any network access.
func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the manifest from synced exercises on disk",
		Long: `Walks the exercise output root, reads every meta.json sidecar, derives
media availability from the files actually present, and rewrites the
manifest. Useful after manual cleanups or partial runs.`,
		RunE: runRebuildCommand,
	}
}

func runRebuildCommand(cmd *cobra.Command, _ []string) error {
	app, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	s := store.NewExerciseStore(app.cfg.OutRoot)
	entries, err := manifest.RebuildFromDisk(s, app.cfg.Angles, app.logger)
	if err != nil {
		return err
	}

	m := manifest.Build(entries, manifest.ModeGenerated)
	if err := manifest.Write(app.cfg.ManifestPath, m); err != nil {
		return err
	}

	app.logger.Info("manifest rebuilt",
		zap.Int("exercises", len(m.Exercises)),
		zap.String("manifest", app.cfg.ManifestPath),
	)
	return nil
}
