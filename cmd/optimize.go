package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/media"
)

// newOptimizeCmd creates the 'optimize' subcommand, which re-encodes synced
// videos at a mobile-friendly width. It is a dry run unless --apply is set.
func newOptimizeCmd() *cobra.Command {
	var (
		apply     bool
		limit     int
		width     int
		crf       uint32
		backupDir string
	)

	cmd := &cobra.Command{
		Use:   "optimize [dir]",
		Short: "Re-encode synced videos for mobile delivery",
		Long: `Walks the exercise output root (or the given directory) for mp4 and webm
files, re-encodes each at the target width, and keeps the result only when
it is smaller. Originals are backed up before the first rewrite. Without
--apply only the plan is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			dir := app.cfg.OutRoot
			if len(args) == 1 {
				dir = args[0]
			}

			opt := media.NewOptimizer(media.OptimizerOptions{
				Apply:       apply,
				Limit:       limit,
				MobileWidth: width,
				CRF:         crf,
				BackupDir:   backupDir,
				FFmpegPath:  app.cfg.FFmpegPath,
				FFprobePath: app.cfg.FFprobePath,
			}, app.logger)

			report, err := opt.Run(cmd.Context(), dir)
			if err != nil {
				return err
			}

			app.logger.Info("optimize complete",
				zap.Bool("apply", apply),
				zap.Int("files", report.Files),
				zap.Int("changed", report.Changed),
				zap.Int64("bytes_before", report.BytesBefore),
				zap.Int64("bytes_after", report.BytesAfter),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "rewrite files instead of printing the plan")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most N files (0 = all)")
	cmd.Flags().IntVar(&width, "mobile-width", 720, "target maximum width in pixels")
	cmd.Flags().Uint32Var(&crf, "crf", 28, "encoder quality factor")
	cmd.Flags().StringVar(&backupDir, "backup-dir", ".tmp/video-backups", "where originals are copied before rewriting")
	return cmd
}
