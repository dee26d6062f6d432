package media

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/floostack/transcoder/ffmpeg"
)

// Encoder converts downloaded clips into the web delivery formats and
// extracts poster frames.
type Encoder interface {
	ToWebM(ctx context.Context, input, output string) error
	ToMP4(ctx context.Context, input, output string) error
	Poster(ctx context.Context, input, output string) error
}

// FFmpegEncoder drives a local ffmpeg binary. The zero value is not usable;
// construct via NewFFmpegEncoder.
type FFmpegEncoder struct {
	cfg *ffmpeg.Config
}

// NewFFmpegEncoder builds an encoder around the given binary paths. Empty
// paths fall back to PATH lookup.
func NewFFmpegEncoder(ffmpegPath, ffprobePath string) *FFmpegEncoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegEncoder{cfg: &ffmpeg.Config{
		FfmpegBinPath:   ffmpegPath,
		FfprobeBinPath:  ffprobePath,
		ProgressEnabled: true,
	}}
}

// Available reports whether both ffmpeg and ffprobe resolve to executables.
func (e *FFmpegEncoder) Available() bool {
	for _, bin := range []string{e.cfg.FfmpegBinPath, e.cfg.FfprobeBinPath} {
		if _, err := exec.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

// ToWebM transcodes to VP9 webm tuned for short silent loops.
func (e *FFmpegEncoder) ToWebM(ctx context.Context, input, output string) error {
	opts := &ffmpeg.Options{
		OutputFormat: strPtr("webm"),
		Overwrite:    boolPtr(true),
		VideoCodec:   strPtr("libvpx-vp9"),
		Crf:          uint32Ptr(34),
		VideoBitRate: strPtr("0"),
		PixFmt:       strPtr("yuv420p"),
		SkipAudio:    boolPtr(true),
	}
	return e.run(ctx, input, output, opts)
}

// ToMP4 transcodes to H.264 mp4 with the moov atom up front for instant
// playback start.
func (e *FFmpegEncoder) ToMP4(ctx context.Context, input, output string) error {
	opts := &ffmpeg.Options{
		OutputFormat: strPtr("mp4"),
		Overwrite:    boolPtr(true),
		VideoCodec:   strPtr("libx264"),
		Preset:       strPtr("veryfast"),
		Crf:          uint32Ptr(28),
		MovFlags:     strPtr("+faststart"),
		PixFmt:       strPtr("yuv420p"),
		SkipAudio:    boolPtr(true),
	}
	return e.run(ctx, input, output, opts)
}

// Poster grabs a single frame shortly after the start, skipping any initial
// fade-in.
func (e *FFmpegEncoder) Poster(ctx context.Context, input, output string) error {
	opts := &ffmpeg.Options{
		Overwrite: boolPtr(true),
		SeekTime:  strPtr("00:00:00.200"),
		ExtraArgs: map[string]interface{}{"-frames:v": "1"},
	}
	return e.run(ctx, input, output, opts)
}

func (e *FFmpegEncoder) run(ctx context.Context, input, output string, opts *ffmpeg.Options) error {
	progress, err := ffmpeg.
		New(e.cfg).
		Input(input).
		Output(output).
		WithContext(&ctx).
		WithOptions(opts).
		Start(opts)
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w", output, err)
	}
	for range progress {
		// Drain so the transcode can finish; per-frame progress is noise
		// for clips this short.
	}
	return ctx.Err()
}

func strPtr(s string) *string    { return &s }
func boolPtr(b bool) *bool       { return &b }
func uint32Ptr(v uint32) *uint32 { return &v }
