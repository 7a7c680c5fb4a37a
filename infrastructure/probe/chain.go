package probe

import (
	"context"
	"fmt"

	"media-remuxer/domain/container"

	"go.uber.org/zap"
)

// Chain routes probes to a native parser by container family and
// falls back to a generic prober (ffprobe) for everything else
type Chain struct {
	mp4      container.Prober
	ts       container.Prober
	fallback container.Prober
	logger   *zap.Logger
}

// NewChain creates a Chain; fallback may be nil
func NewChain(fallback container.Prober, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		mp4:      NewMP4Prober(),
		ts:       NewTSProber(),
		fallback: fallback,
		logger:   logger,
	}
}

// Probe implements container.Prober
func (c *Chain) Probe(ctx context.Context, path string) (*container.Info, error) {
	native := c.nativeFor(path)
	if native != nil {
		info, err := native.Probe(ctx, path)
		if err == nil {
			return info, nil
		}
		if c.fallback == nil {
			return nil, err
		}
		c.logger.Debug("native probe failed, falling back", zap.String("path", path), zap.Error(err))
	}

	if c.fallback == nil {
		return nil, fmt.Errorf("no prober available for %s", path)
	}
	return c.fallback.Probe(ctx, path)
}

func (c *Chain) nativeFor(path string) container.Prober {
	format, err := container.FormatFromPath(path)
	if err != nil {
		return nil
	}
	switch {
	case format.IsISOBMFF():
		return c.mp4
	case format == container.FormatTS:
		return c.ts
	}
	return nil
}

// Ensure Chain implements container.Prober
var _ container.Prober = (*Chain)(nil)
