package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"media-remuxer/domain/container"
)

// Prober implements container.Prober using ffprobe
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		if path != "" {
			p.ffprobePath = path
		}
	}
}

// WithProberCommandRunner sets a custom command runner (for testing)
func WithProberCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// NewProber creates a new ffprobe-based prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type probeOutput struct {
	Streams []struct {
		Index     int    `json:"index"`
		CodecName string `json:"codec_name"`
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration  string `json:"duration"`
		StartTime string `json:"start_time"`
	} `json:"format"`
}

// Probe implements container.Prober
func (p *Prober) Probe(ctx context.Context, path string) (*container.Info, error) {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &container.Info{
		Path:      path,
		Duration:  parseSeconds(parsed.Format.Duration),
		StartTime: parseSeconds(parsed.Format.StartTime),
	}
	if format, err := container.FormatFromPath(path); err == nil {
		info.Format = format
	}

	for _, s := range parsed.Streams {
		info.Tracks = append(info.Tracks, container.Track{
			ID:       s.Index,
			Kind:     trackKind(s.CodecType),
			Codec:    s.CodecName,
			Duration: parseSeconds(s.Duration),
		})
	}

	return info, nil
}

func parseSeconds(s string) time.Duration {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return time.Duration(math.Round(v * float64(time.Second)))
}

func trackKind(codecType string) container.TrackKind {
	switch codecType {
	case "video":
		return container.TrackVideo
	case "audio":
		return container.TrackAudio
	case "subtitle":
		return container.TrackSubtitle
	}
	return container.TrackData
}

// Ensure Prober implements container.Prober
var _ container.Prober = (*Prober)(nil)
