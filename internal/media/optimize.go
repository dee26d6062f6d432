package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/floostack/transcoder/ffmpeg"
	"go.uber.org/zap"
)

// OptimizerOptions tunes a re-encode pass over already synced videos.
type OptimizerOptions struct {
	Apply       bool
	Limit       int
	MobileWidth int
	CRF         uint32
	BackupDir   string
	FFmpegPath  string
	FFprobePath string
}

// Optimizer re-encodes synced clips at a mobile-friendly width, keeping the
// result only when it is actually smaller. Originals are backed up before
// the first rewrite.
type Optimizer struct {
	opts   OptimizerOptions
	cfg    *ffmpeg.Config
	logger *zap.Logger
}

// OptimizeReport summarizes one optimizer pass.
type OptimizeReport struct {
	Files       int
	Changed     int
	BytesBefore int64
	BytesAfter  int64
}

// NewOptimizer builds an optimizer. Defaults: 720px width, crf 28.
func NewOptimizer(opts OptimizerOptions, logger *zap.Logger) *Optimizer {
	if opts.MobileWidth <= 0 {
		opts.MobileWidth = 720
	}
	if opts.CRF == 0 {
		opts.CRF = 28
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	return &Optimizer{
		opts: opts,
		cfg: &ffmpeg.Config{
			FfmpegBinPath:   opts.FFmpegPath,
			FfprobeBinPath:  opts.FFprobePath,
			ProgressEnabled: true,
		},
		logger: logger,
	}
}

// Run walks targetDir for mp4 and webm files and processes them in name
// order. Without Apply it only reports what would change.
func (o *Optimizer) Run(ctx context.Context, targetDir string) (OptimizeReport, error) {
	var report OptimizeReport

	if _, err := os.Stat(targetDir); err != nil {
		return report, fmt.Errorf("target dir: %w", err)
	}
	for _, bin := range []string{o.opts.FFmpegPath, o.opts.FFprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return report, fmt.Errorf("%s not found: %w", bin, err)
		}
	}

	files, err := videoFiles(targetDir)
	if err != nil {
		return report, err
	}
	if o.opts.Limit > 0 && len(files) > o.opts.Limit {
		files = files[:o.opts.Limit]
	}
	report.Files = len(files)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := o.processFile(ctx, targetDir, file, &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (o *Optimizer) processFile(ctx context.Context, targetDir, file string, report *OptimizeReport) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	before := info.Size()
	report.BytesBefore += before

	width, codec := o.probeVideo(ctx, file)
	shouldScale := width > 0 && width > o.opts.MobileWidth

	if !o.opts.Apply {
		o.logger.Info("plan",
			zap.String("file", file),
			zap.String("codec", codec),
			zap.Int64("bytes", before),
			zap.Int("width", width),
			zap.Bool("scale", shouldScale),
		)
		report.BytesAfter += before
		return nil
	}

	if err := o.backup(targetDir, file); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(file))
	tmpOut := file + ".tmp-opt" + ext
	if err := o.reencode(ctx, file, tmpOut, ext, shouldScale); err != nil {
		os.Remove(tmpOut)
		return fmt.Errorf("reencode %s: %w", file, err)
	}

	tmpInfo, err := os.Stat(tmpOut)
	if err != nil {
		return err
	}
	after := tmpInfo.Size()

	if after >= before {
		os.Remove(tmpOut)
		report.BytesAfter += before
		o.logger.Info("skip, not smaller",
			zap.String("file", file),
			zap.Int64("before", before),
			zap.Int64("after", after),
		)
		return nil
	}

	if err := os.Rename(tmpOut, file); err != nil {
		return err
	}
	report.BytesAfter += after
	report.Changed++
	o.logger.Info("optimized",
		zap.String("file", file),
		zap.Int64("before", before),
		zap.Int64("after", after),
	)
	return nil
}

// backup copies the original next to its relative path under the backup dir,
// once; reruns never clobber the first backup.
func (o *Optimizer) backup(targetDir, file string) error {
	if o.opts.BackupDir == "" {
		return nil
	}
	rel, err := filepath.Rel(targetDir, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	backupPath := filepath.Join(o.opts.BackupDir, rel)
	if fileExists(backupPath) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return err
	}
	return copyFile(file, backupPath)
}

func (o *Optimizer) reencode(ctx context.Context, input, output, ext string, scale bool) error {
	overwrite := true
	skipAudio := true
	opts := &ffmpeg.Options{
		Overwrite: &overwrite,
		SkipAudio: &skipAudio,
	}
	if scale {
		vf := fmt.Sprintf("scale='min(%d,iw)':-2:flags=lanczos", o.opts.MobileWidth)
		opts.VideoFilter = &vf
	}
	crf := o.opts.CRF
	opts.Crf = &crf
	if ext == ".webm" {
		codec := "libvpx-vp9"
		rate := "0"
		format := "webm"
		opts.VideoCodec = &codec
		opts.VideoBitRate = &rate
		opts.OutputFormat = &format
		opts.ExtraArgs = map[string]interface{}{"-row-mt": "1"}
	} else {
		codec := "libx264"
		preset := "slow"
		pixFmt := "yuv420p"
		format := "mp4"
		movFlags := "+faststart"
		opts.VideoCodec = &codec
		opts.Preset = &preset
		opts.PixFmt = &pixFmt
		opts.OutputFormat = &format
		opts.MovFlags = &movFlags
	}

	progress, err := ffmpeg.
		New(o.cfg).
		Input(input).
		Output(output).
		WithContext(&ctx).
		WithOptions(opts).
		Start(opts)
	if err != nil {
		return err
	}
	for range progress {
	}
	return ctx.Err()
}

// probeVideo returns the width and codec name of the first video stream,
// zero values when probing fails. Probe failure only disables scaling.
func (o *Optimizer) probeVideo(ctx context.Context, file string) (int, string) {
	out, err := exec.CommandContext(ctx, o.opts.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		file,
	).Output()
	if err != nil {
		return 0, ""
	}

	var meta struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			CodecName string `json:"codec_name"`
			Width     int    `json:"width"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &meta); err != nil {
		return 0, ""
	}
	for _, s := range meta.Streams {
		if s.CodecType == "video" {
			return s.Width, s.CodecName
		}
	}
	return 0, ""
}

func videoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".mp4", ".webm":
			if strings.Contains(path, ".tmp-opt") {
				return nil
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk videos: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
