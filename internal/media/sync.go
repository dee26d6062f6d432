package media

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/calistenia/catalog/internal/catalog"
	"github.com/calistenia/catalog/internal/store"
)

// Downloader is the subset of the fetch client the syncer needs.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// Syncer materializes an exercise's selected media into its directory.
// Failures are per-angle and non-fatal: a missing clip degrades that angle,
// it never kills the run.
type Syncer struct {
	client    Downloader
	encoder   Encoder
	logger    *zap.Logger
	angles    []string
	resume    bool
	transcode bool
}

// SyncerOptions configures a Syncer.
type SyncerOptions struct {
	Angles    []string
	Resume    bool
	Transcode bool
}

// NewSyncer builds a media syncer. Encoder may be nil when transcoding is
// disabled or ffmpeg is unavailable; clips are then copied in their source
// container.
func NewSyncer(client Downloader, encoder Encoder, opts SyncerOptions, logger *zap.Logger) *Syncer {
	return &Syncer{
		client:    client,
		encoder:   encoder,
		logger:    logger,
		angles:    opts.Angles,
		resume:    opts.Resume,
		transcode: opts.Transcode,
	}
}

// Sync downloads and converts every selected angle of rec into dir.
func (s *Syncer) Sync(ctx context.Context, rec catalog.ExerciseRecord, dir string) {
	for _, angle := range s.angles {
		if err := ctx.Err(); err != nil {
			return
		}
		if err := s.syncAngle(ctx, rec, dir, angle); err != nil {
			s.logger.Warn("media sync failed",
				zap.String("slug", rec.Slug),
				zap.String("angle", angle),
				zap.Error(err),
			)
		}
	}
}

func (s *Syncer) syncAngle(ctx context.Context, rec catalog.ExerciseRecord, dir, angle string) error {
	ref, ok := rec.MediaRefs[angle]
	if !ok || ref.URL == "" {
		return nil
	}
	if s.resume && store.MediaComplete(dir, angle) {
		return nil
	}
	posterPath := filepath.Join(dir, "poster-"+angle+".jpg")

	ext := strings.ToLower(extFromURL(ref.URL))
	if ext == "" {
		if ref.Kind == catalog.KindVideo {
			ext = ".mp4"
		} else {
			ext = ".jpg"
		}
	}

	tmp := filepath.Join(os.TempDir(), catalog.SafeFile(rec.Slug)+"-"+angle+ext)
	buf, err := s.client.Download(ctx, ref.URL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	defer os.Remove(tmp)

	if posterURL := rec.PosterRefs[angle]; posterURL != "" && !fileExists(posterPath) {
		if posterBuf, err := s.client.Download(ctx, posterURL); err == nil {
			if err := os.WriteFile(posterPath, posterBuf, 0o644); err != nil {
				s.logger.Warn("poster write failed", zap.String("slug", rec.Slug), zap.Error(err))
			}
		}
	}

	if ref.Kind != catalog.KindVideo && ext != ".gif" {
		if !fileExists(posterPath) {
			return copyFile(tmp, posterPath)
		}
		return nil
	}

	targetBase := filepath.Join(dir, angle)
	if s.transcode && s.encoder != nil {
		if err := s.encoder.ToWebM(ctx, tmp, targetBase+".webm"); err != nil {
			return err
		}
		if err := s.encoder.ToMP4(ctx, tmp, targetBase+".mp4"); err != nil {
			return err
		}
		if !fileExists(posterPath) {
			if err := s.encoder.Poster(ctx, tmp, posterPath); err != nil {
				s.logger.Warn("poster extraction failed", zap.String("slug", rec.Slug), zap.Error(err))
			}
		}
		return nil
	}

	// Raw copy keeps the clip's real container so gif and mov sources stay
	// what they claim to be.
	return copyFile(tmp, targetBase+ext)
}

func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
