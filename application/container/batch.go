package container

import (
	"context"
	"fmt"
	"path/filepath"

	"media-remuxer/domain/container"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SegmentLister lists the media segments of a directory in playback order
type SegmentLister interface {
	ListSegments(dir string) ([]string, error)
}

// BatchService converts whole directories of segments
type BatchService struct {
	service *Service
	lister  SegmentLister
	prober  container.Prober
	workers int
	logger  *zap.Logger
}

// NewBatchService creates a BatchService running up to workers conversions
// at once. prober may be nil, in which case every segment starts at base.
func NewBatchService(service *Service, lister SegmentLister, prober container.Prober, workers int, logger *zap.Logger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		service: service,
		lister:  lister,
		prober:  prober,
		workers: workers,
		logger:  logger,
	}
}

// ConvertDir converts every segment in dir. Segment i starts at base plus
// the durations of segments 0..i-1, so converted files line up on a single
// timeline. Results are returned in segment order; the first failure
// cancels the remaining conversions.
func (b *BatchService) ConvertDir(ctx context.Context, dir string, base container.Offset) ([]*Result, error) {
	segments, err := b.lister.ListSegments(dir)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, nil
	}

	offsets, err := b.offsets(ctx, segments, base)
	if err != nil {
		return nil, err
	}

	b.logger.Info("converting segments",
		zap.String("dir", dir),
		zap.Int("segments", len(segments)),
		zap.Int("workers", b.workers),
	)

	results := make([]*Result, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			r, err := b.service.ConvertSegment(gctx, seg, offsets[i])
			if err != nil {
				return fmt.Errorf("convert %s: %w", filepath.Base(seg), err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *BatchService) offsets(ctx context.Context, segments []string, base container.Offset) ([]container.Offset, error) {
	offsets := make([]container.Offset, len(segments))
	elapsed := base.Seconds()

	for i, seg := range segments {
		o, err := container.NewOffset(elapsed)
		if err != nil {
			return nil, err
		}
		offsets[i] = o

		if b.prober == nil {
			continue
		}
		info, err := b.prober.Probe(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", filepath.Base(seg), err)
		}
		elapsed += info.Duration.Seconds()
	}

	return offsets, nil
}

// Follow converts segments from paths in arrival order until paths is
// closed or ctx is done. Each segment starts where the previous one ended.
// onResult is called once per segment; a failed segment does not stop the
// stream and does not advance the timeline. A path seen again keeps the
// start it was first given and does not advance the timeline either.
func (b *BatchService) Follow(ctx context.Context, paths <-chan string, base container.Offset, onResult func(path string, r *Result, err error)) error {
	elapsed := base.Seconds()
	placed := make(map[string]container.Offset)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case seg, ok := <-paths:
			if !ok {
				return nil
			}

			if start, ok := placed[seg]; ok {
				b.logger.Debug("segment seen again", zap.String("segment", seg), zap.String("start", start.String()))
				r, err := b.service.ConvertSegment(ctx, seg, start)
				onResult(seg, r, err)
				continue
			}

			start, err := container.NewOffset(elapsed)
			if err != nil {
				return err
			}

			r, err := b.service.ConvertSegment(ctx, seg, start)
			if err == nil {
				placed[seg] = start
			}
			if err == nil && b.prober != nil {
				info, perr := b.prober.Probe(ctx, seg)
				if perr != nil {
					b.logger.Warn("could not probe segment duration", zap.String("segment", seg), zap.Error(perr))
				} else {
					elapsed += info.Duration.Seconds()
				}
			}
			onResult(seg, r, err)
		}
	}
}
