package probe

import (
	"context"
	"fmt"
	"os"
	"time"

	"media-remuxer/domain/container"

	mp4 "github.com/abema/go-mp4"
)

// MP4Prober reads ISOBMFF metadata (moov/mvhd/trak) without invoking ffprobe.
// Fragmented tracks with an empty mdhd duration are timed from their moof
// fragments.
type MP4Prober struct{}

// NewMP4Prober creates a new MP4Prober
func NewMP4Prober() *MP4Prober {
	return &MP4Prober{}
}

// Probe implements container.Prober
func (p *MP4Prober) Probe(ctx context.Context, path string) (*container.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pi, err := mp4.Probe(f)
	if err != nil {
		return nil, fmt.Errorf("failed to probe mp4 %s: %w", path, err)
	}
	if pi.Timescale == 0 && len(pi.Tracks) == 0 && len(pi.Segments) > 0 {
		// a media fragment carries no timescale without its init segment
		return nil, fmt.Errorf("%s has %d fragments but no movie header", path, len(pi.Segments))
	}

	fragmented := make(map[uint32]uint64)
	for _, seg := range pi.Segments {
		fragmented[seg.TrackID] += uint64(seg.Duration)
	}

	info := &container.Info{
		Path:     path,
		Duration: durationMP4ToGo(pi.Duration, pi.Timescale),
	}
	if format, err := container.FormatFromPath(path); err == nil {
		info.Format = format
	}

	for _, tr := range pi.Tracks {
		units := tr.Duration
		if units == 0 {
			units = fragmented[tr.TrackID]
		}
		d := durationMP4ToGo(units, tr.Timescale)
		if d > info.Duration {
			info.Duration = d
		}
		info.Tracks = append(info.Tracks, container.Track{
			ID:       int(tr.TrackID),
			Kind:     mp4TrackKind(tr.Codec),
			Codec:    mp4CodecName(tr.Codec),
			Duration: d,
		})
	}

	return info, nil
}

func durationMP4ToGo(v uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	secs := v / uint64(timescale)
	dec := v % uint64(timescale)
	return time.Duration(secs)*time.Second + time.Duration(dec)*time.Second/time.Duration(timescale)
}

func mp4TrackKind(c mp4.Codec) container.TrackKind {
	switch c {
	case mp4.CodecAVC1:
		return container.TrackVideo
	case mp4.CodecMP4A:
		return container.TrackAudio
	}
	return container.TrackData
}

func mp4CodecName(c mp4.Codec) string {
	switch c {
	case mp4.CodecAVC1:
		return "h264"
	case mp4.CodecMP4A:
		return "aac"
	}
	return "unknown"
}

// Ensure MP4Prober implements container.Prober
var _ container.Prober = (*MP4Prober)(nil)
