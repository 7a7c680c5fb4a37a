package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"media-remuxer/domain/container"

	"go.uber.org/zap"
)

// Remuxer implements container.Remuxer using ffmpeg stream copy
type Remuxer struct {
	ffmpegPath string
	runner     CommandRunner
	logger     *zap.Logger
	fastStart  bool
}

// RemuxerOption is a functional option for configuring Remuxer
type RemuxerOption func(*Remuxer)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) RemuxerOption {
	return func(r *Remuxer) {
		if path != "" {
			r.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) RemuxerOption {
	return func(r *Remuxer) {
		r.runner = runner
	}
}

// WithLogger sets the logger used for command tracing
func WithLogger(logger *zap.Logger) RemuxerOption {
	return func(r *Remuxer) {
		r.logger = logger
	}
}

// WithFastStart toggles moving the moov box to the front of MP4 outputs
func WithFastStart(enabled bool) RemuxerOption {
	return func(r *Remuxer) {
		r.fastStart = enabled
	}
}

// NewRemuxer creates a new FFmpeg-based remuxer
func NewRemuxer(opts ...RemuxerOption) *Remuxer {
	r := &Remuxer{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     zap.NewNop(),
		fastStart:  true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Remux implements container.Remuxer
func (r *Remuxer) Remux(ctx context.Context, req *container.RemuxRequest, tmpPath string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", req.SourcePath,
	}
	args = append(args, r.outputArgs(req.Format, tmpPath)...)

	r.logger.Debug("running ffmpeg remux", zap.String("source", req.SourcePath), zap.Strings("args", args))
	if err := r.runner.Run(ctx, r.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg remux failed: %w", err)
	}

	return nil
}

// Repack implements container.Remuxer
func (r *Remuxer) Repack(ctx context.Context, req *container.RepackRequest, tmpPath string) error {
	args := []string{"-hide_banner", "-loglevel", "error"}

	switch {
	case req.IsPlainCopy():
		args = append(args, "-i", req.SourcePath)
	case req.Mode == container.ModeShift:
		args = append(args,
			"-i", req.SourcePath,
			"-output_ts_offset", seconds(req.Start),
		)
	default:
		// Input-side seek snaps to the nearest keyframe, which keeps stream copy decodable
		args = append(args,
			"-ss", req.Start.String(),
			"-i", req.SourcePath,
			"-avoid_negative_ts", "make_zero",
		)
	}
	args = append(args, r.outputArgs(req.Format, tmpPath)...)

	r.logger.Debug("running ffmpeg repack",
		zap.String("source", req.SourcePath),
		zap.String("mode", string(req.Mode)),
		zap.Float64("start", req.Start.Seconds()),
		zap.Strings("args", args),
	)
	if err := r.runner.Run(ctx, r.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg repack failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (r *Remuxer) VerifyInstalled(ctx context.Context) error {
	_, err := r.runner.Output(ctx, r.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

func (r *Remuxer) outputArgs(format container.Format, tmpPath string) []string {
	args := []string{
		"-map", "0",
		"-c", "copy",
	}
	if format.IsISOBMFF() && r.fastStart {
		args = append(args, "-movflags", "+faststart")
	}
	return append(args,
		"-f", format.Muxer(),
		"-y", // Overwrite output file if it exists
		tmpPath,
	)
}

func seconds(o container.Offset) string {
	return strconv.FormatFloat(o.Seconds(), 'f', -1, 64)
}

// Ensure Remuxer implements container.Remuxer
var _ container.Remuxer = (*Remuxer)(nil)
