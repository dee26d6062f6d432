package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/manifest"
)

// newValidateCmd creates the 'validate' subcommand, which checks a written
// manifest for structural problems and exits non-zero when any are found.
func newValidateCmd() *cobra.Command {
	var staticRoot string

	cmd := &cobra.Command{
		Use:   "validate [manifest-path]",
		Short: "Validate a manifest against disk",
		Long: `Checks the manifest for missing slugs, groups outside the taxonomy,
media paths that do not resolve to files under the static root, and filter
values no exercise carries.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			path := app.cfg.ManifestPath
			if len(args) == 1 {
				path = args[0]
			}

			m, err := manifest.Read(path)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}

			violations := manifest.Validate(m, staticRoot)
			for _, v := range violations {
				app.logger.Error("manifest violation", zap.String("detail", v))
			}
			if len(violations) > 0 {
				return fmt.Errorf("manifest invalid: %d violations", len(violations))
			}

			app.logger.Info("manifest ok", zap.Int("exercises", len(m.Exercises)))
			return nil
		},
	}

	cmd.Flags().StringVar(&staticRoot, "static-root", "public", "directory rooted manifest paths are served from")
	return cmd
}
