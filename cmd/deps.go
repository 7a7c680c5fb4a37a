package cmd

import (
	"context"
	"fmt"
	"time"

	appcontainer "media-remuxer/application/container"
	"media-remuxer/domain/container"
	"media-remuxer/infrastructure/config"
	"media-remuxer/infrastructure/ffmpeg"
	"media-remuxer/infrastructure/filesystem"
	"media-remuxer/infrastructure/probe"

	"go.uber.org/zap"
)

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// Dependencies are the collaborators shared by the container commands
type Dependencies struct {
	Remuxer     container.Remuxer
	FileChecker container.FileChecker
	Stager      container.Stager
	Prober      container.Prober // optional
	Lister      appcontainer.SegmentLister
	Logger      *zap.Logger
	Verify      bool
	Suffix      string
	Workers     int
}

// NewDependencies builds the production dependencies from cfg
func NewDependencies(cfg *config.Config, logger *zap.Logger) Dependencies {
	fallback := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.ProbePath))

	return Dependencies{
		Remuxer: ffmpeg.NewRemuxer(
			ffmpeg.WithFFmpegPath(cfg.FFmpeg.Path),
			ffmpeg.WithFastStart(cfg.Output.FastStart),
			ffmpeg.WithLogger(logger),
		),
		FileChecker: filesystem.NewChecker(),
		Stager:      filesystem.NewStager(),
		Prober:      probe.NewChain(fallback, logger),
		Lister:      filesystem.NewSegmentFinder(cfg.Segments.Suffix),
		Logger:      logger,
		Verify:      cfg.Output.Verify,
		Suffix:      cfg.Segments.Suffix,
		Workers:     cfg.Segments.Workers,
	}
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Dependencies) service() *appcontainer.Service {
	opts := []appcontainer.Option{
		appcontainer.WithLogger(d.logger()),
		appcontainer.WithVerify(d.Verify),
		appcontainer.WithConvertedSuffix(d.Suffix),
	}
	if d.Prober != nil {
		opts = append(opts, appcontainer.WithProber(d.Prober))
	}
	return appcontainer.NewService(d.Remuxer, d.FileChecker, d.Stager, opts...)
}

func (d Dependencies) batch() *appcontainer.BatchService {
	return appcontainer.NewBatchService(d.service(), d.Lister, d.Prober, d.Workers, d.logger())
}

// verifyTools checks ffmpeg is runnable when the remuxer supports it
func verifyTools(ctx context.Context, d Dependencies) error {
	if verifiable, ok := d.Remuxer.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}
	return nil
}

// withTimeout bounds ctx by the configured ffmpeg timeout; zero means none
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// productionDependencies loads the config and builds the real dependencies
func productionDependencies() (*config.Config, Dependencies, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, Dependencies{}, err
	}
	return cfg, NewDependencies(cfg, GetLogger()), nil
}

func printResult(output OutputWriter, verb string, r *appcontainer.Result) {
	if r.Cached {
		fmt.Fprintf(output, "Already converted: %s\n", r.OutputPath)
		return
	}
	if r.Tracks > 0 {
		fmt.Fprintf(output, "Successfully %s: %s (%d tracks, %s)\n", verb, r.OutputPath, r.Tracks, r.Duration)
		return
	}
	fmt.Fprintf(output, "Successfully %s: %s\n", verb, r.OutputPath)
}
