// Package cmd defines and implements the CLI commands for the catalog
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/config"
	"github.com/calistenia/catalog/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the app in the context.
type appKeyType string

const appKey appKeyType = "app"

// appState carries the loaded configuration and logger into subcommands.
type appState struct {
	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd creates and configures the root command. Configuration is
// loaded in PersistentPreRunE so every subcommand sees the same merged view
// of defaults, config file, environment, and flags.
func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Exercise catalog ingestion for the calisthenics gallery",
		Long: `catalog ingests the MuscleWiki exercise catalog into a static gallery
layout: it crawls or syncs exercises, normalizes them into a closed
taxonomy, downloads and transcodes per-angle media, and assembles the
manifest the gallery frontend consumes.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.SetDefaults(v)
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config file: %w", err)
				}
			}

			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, &appState{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey).(*appState); ok && app != nil {
				_ = app.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	flags := cmd.PersistentFlags()
	flags.String("out", "", "exercise output root")
	flags.String("manifest", "", "manifest output path")
	flags.String("raw", "", "raw snapshot directory")
	flags.Int("concurrency", 0, "worker count")
	flags.Int("limit", 0, "process at most N exercises (0 = all)")
	flags.Bool("dry-run", false, "normalize and build the manifest without media")
	flags.Bool("skip-media", false, "skip media download entirely")
	flags.Bool("resume", false, "skip exercises and angles already on disk")
	flags.Bool("save-raw", false, "persist raw page bodies")
	flags.Bool("transcode", false, "transcode clips to webm+mp4 via ffmpeg")
	flags.String("gender", "", "preferred demonstration gender")
	flags.String("angles", "", "comma-separated camera angles")
	flags.String("equipment", "", "comma-separated equipment scope")
	flags.String("api-key", "", "RapidAPI key for sync runs")

	for key, flag := range map[string]string{
		"output.root":          "out",
		"output.manifest":      "manifest",
		"output.raw_root":      "raw",
		"pipeline.concurrency": "concurrency",
		"pipeline.limit":       "limit",
		"pipeline.dry_run":     "dry-run",
		"pipeline.skip_media":  "skip-media",
		"pipeline.resume":      "resume",
		"pipeline.save_raw":    "save-raw",
		"pipeline.equipment":   "equipment",
		"media.transcode":      "transcode",
		"media.gender":         "gender",
		"media.angles":         "angles",
		"source.api_key":       "api-key",
	} {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}

	cmd.AddCommand(
		newCrawlCmd(),
		newSyncCmd(),
		newRebuildCmd(),
		newValidateCmd(),
		newOptimizeCmd(),
	)
	return cmd
}

// resolveApp retrieves the injected app state from the command context.
func resolveApp(ctx context.Context) (*appState, error) {
	app, ok := ctx.Value(appKey).(*appState)
	if !ok || app == nil {
		return nil, errors.New("application services not initialized")
	}
	return app, nil
}

// Execute is the main entry point. Interrupt signals cancel the run context
// so in-flight items can finish and the manifest still gets written.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
