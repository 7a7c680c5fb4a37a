package container

import (
	"context"
	"fmt"
	"time"

	"media-remuxer/domain/container"

	"go.uber.org/zap"
)

// DefaultConvertedSuffix is appended to converted segment names
const DefaultConvertedSuffix = "-converted"

// Result contains the result of a remux or repack operation
type Result struct {
	OutputPath string
	Format     container.Format
	Duration   time.Duration
	Tracks     int
	Cached     bool // output already existed and was reused
}

// Service coordinates remux and repack operations
type Service struct {
	remuxer     container.Remuxer
	fileChecker container.FileChecker
	stager      container.Stager
	prober      container.Prober
	logger      *zap.Logger
	verify      bool
	suffix      string
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithProber enables source duration checks and output verification
func WithProber(p container.Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithVerify toggles probing outputs before committing them
func WithVerify(enabled bool) Option {
	return func(s *Service) {
		s.verify = enabled
	}
}

// WithConvertedSuffix sets the suffix used by ConvertSegment
func WithConvertedSuffix(suffix string) Option {
	return func(s *Service) {
		if suffix != "" {
			s.suffix = suffix
		}
	}
}

// NewService creates a new Service
func NewService(remuxer container.Remuxer, fileChecker container.FileChecker, stager container.Stager, opts ...Option) *Service {
	s := &Service{
		remuxer:     remuxer,
		fileChecker: fileChecker,
		stager:      stager,
		logger:      zap.NewNop(),
		verify:      true,
		suffix:      DefaultConvertedSuffix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RemuxInput represents the input for a remux operation
type RemuxInput struct {
	SourcePath string
	OutputPath string
}

// RepackInput represents the input for a repack operation
type RepackInput struct {
	SourcePath string
	OutputPath string
	StartTime  string // seconds or HH:MM:SS[.fff]
	Mode       container.Mode
}

// Remux copies every stream of the source into the container named by the output extension
func (s *Service) Remux(ctx context.Context, input RemuxInput) (*Result, error) {
	req, err := container.NewRemuxRequest(input.SourcePath, input.OutputPath)
	if err != nil {
		return nil, err
	}

	if !s.fileChecker.Exists(req.SourcePath) {
		return nil, fmt.Errorf("%w: %s", container.ErrSourceNotFound, req.SourcePath)
	}

	s.logger.Info("remuxing",
		zap.String("source", req.SourcePath),
		zap.String("output", req.OutputPath),
		zap.String("format", req.Format.String()),
	)

	result, err := s.write(ctx, req.OutputPath, func(tmpPath string) error {
		return s.remuxer.Remux(ctx, req, tmpPath)
	})
	if err != nil {
		s.logger.Error("remux failed", zap.String("source", req.SourcePath), zap.Error(err))
		return nil, err
	}

	result.Format = req.Format
	return result, nil
}

// Repack rewrites the source from the given start offset
func (s *Service) Repack(ctx context.Context, input RepackInput) (*Result, error) {
	start, err := container.ParseOffset(input.StartTime)
	if err != nil {
		return nil, err
	}

	return s.repack(ctx, input.SourcePath, input.OutputPath, start, input.Mode)
}

// ConvertSegment repacks a media segment into <base><suffix>.mp4 beside it,
// shifting timestamps so the output begins at start. An existing converted
// file is reused as is.
func (s *Service) ConvertSegment(ctx context.Context, segmentPath string, start container.Offset) (*Result, error) {
	outputPath := container.ConvertedPath(segmentPath, s.suffix)
	if s.fileChecker.Exists(outputPath) {
		s.logger.Debug("segment already converted", zap.String("output", outputPath))
		return &Result{
			OutputPath: outputPath,
			Format:     container.FormatMP4,
			Cached:     true,
		}, nil
	}

	return s.repack(ctx, segmentPath, outputPath, start, container.ModeShift)
}

func (s *Service) repack(ctx context.Context, sourcePath, outputPath string, start container.Offset, mode container.Mode) (*Result, error) {
	req, err := container.NewRepackRequest(sourcePath, outputPath, start, mode)
	if err != nil {
		return nil, err
	}

	if !s.fileChecker.Exists(req.SourcePath) {
		return nil, fmt.Errorf("%w: %s", container.ErrSourceNotFound, req.SourcePath)
	}

	if err := s.checkStart(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("repacking",
		zap.String("source", req.SourcePath),
		zap.String("output", req.OutputPath),
		zap.String("mode", string(req.Mode)),
		zap.String("start", req.Start.String()),
	)

	result, err := s.write(ctx, req.OutputPath, func(tmpPath string) error {
		return s.remuxer.Repack(ctx, req, tmpPath)
	})
	if err != nil {
		s.logger.Error("repack failed", zap.String("source", req.SourcePath), zap.Error(err))
		return nil, err
	}

	result.Format = req.Format
	return result, nil
}

// checkStart rejects trims that start at or past the end of the source.
// An unknown duration lets the request through.
func (s *Service) checkStart(ctx context.Context, req *container.RepackRequest) error {
	if req.Mode != container.ModeTrim || req.Start.IsZero() || s.prober == nil {
		return nil
	}

	info, err := s.prober.Probe(ctx, req.SourcePath)
	if err != nil {
		s.logger.Warn("could not probe source duration", zap.String("source", req.SourcePath), zap.Error(err))
		return nil
	}

	if info.HasDuration() && req.Start.Duration() >= info.Duration {
		return fmt.Errorf("%w: start %s, duration %s", container.ErrOffsetBeyondDuration, req.Start, info.Duration)
	}
	return nil
}

// write runs fn against a staged path and commits it to outputPath only
// if fn succeeds and the output verifies
func (s *Service) write(ctx context.Context, outputPath string, fn func(tmpPath string) error) (*Result, error) {
	tmpPath, err := s.stager.Stage(outputPath)
	if err != nil {
		return nil, err
	}

	if err := fn(tmpPath); err != nil {
		s.stager.Discard(tmpPath)
		return nil, err
	}

	result := &Result{OutputPath: outputPath}

	if s.verify && s.prober != nil {
		info, err := s.prober.Probe(ctx, tmpPath)
		if err != nil {
			s.stager.Discard(tmpPath)
			return nil, fmt.Errorf("output verification failed: %w", err)
		}
		if len(info.Tracks) == 0 {
			s.stager.Discard(tmpPath)
			return nil, fmt.Errorf("%w: %s", container.ErrEmptyOutput, outputPath)
		}
		result.Duration = info.Duration
		result.Tracks = len(info.Tracks)
	}

	if err := s.stager.Commit(tmpPath, outputPath); err != nil {
		s.stager.Discard(tmpPath)
		return nil, err
	}

	s.logger.Info("output written",
		zap.String("output", outputPath),
		zap.Duration("duration", result.Duration),
		zap.Int("tracks", result.Tracks),
	)
	return result, nil
}
