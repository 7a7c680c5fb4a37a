package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"media-remuxer/domain/container"

	"github.com/asticode/go-astits"
)

// pts values are 33-bit, 90kHz
const ptsClockRate = 90000

// TSProber reads MPEG-TS program tables and PES timestamps
type TSProber struct{}

// NewTSProber creates a new TSProber
func NewTSProber() *TSProber {
	return &TSProber{}
}

// ptsWrap is the modulus of a 33-bit PTS counter
const ptsWrap = int64(1) << 33

// unwrapPTS places raw on the timeline of ref, taking the nearest
// 33-bit congruent value so a counter that rolled over keeps increasing
func unwrapPTS(ref, raw int64) int64 {
	delta := (raw - ref) % ptsWrap
	if delta < 0 {
		delta += ptsWrap
	}
	if delta >= ptsWrap/2 {
		delta -= ptsWrap
	}
	return ref + delta
}

// ptsTrack collects the unwrapped PES timestamps of one elementary stream
type ptsTrack struct {
	values []int64
}

func (t *ptsTrack) add(pts int64) {
	t.values = append(t.values, pts)
}

// span returns the first timestamp and the presentation end, which is the
// last timestamp plus one frame. The frame length is the smallest gap
// between distinct timestamps. ok is false when fewer than two distinct
// timestamps were seen.
func (t *ptsTrack) span() (first, end int64, ok bool) {
	if len(t.values) == 0 {
		return 0, 0, false
	}
	sorted := append([]int64(nil), t.values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var frame int64
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		if gap > 0 && (frame == 0 || gap < frame) {
			frame = gap
		}
	}
	if frame == 0 {
		return 0, 0, false
	}
	return sorted[0], sorted[len(sorted)-1] + frame, true
}

// Probe implements container.Prober
func (p *TSProber) Probe(ctx context.Context, path string) (*container.Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return probeTS(ctx, path, bufio.NewReader(f))
}

func probeTS(ctx context.Context, path string, r io.Reader) (*container.Info, error) {
	dem := astits.NewDemuxer(ctx, r)

	var streams []*astits.PMTElementaryStream
	tracks := make(map[uint16]*ptsTrack)

	var ref int64
	var haveRef bool
	for {
		data, err := dem.NextData()
		if err != nil {
			if errors.Is(err, astits.ErrNoMorePackets) || errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to demux %s: %w", path, err)
		}

		if data.PMT != nil && streams == nil {
			streams = data.PMT.ElementaryStreams
			for _, es := range streams {
				tracks[es.ElementaryPID] = &ptsTrack{}
			}
		}

		if data.PES == nil || data.PES.Header == nil || data.PES.Header.OptionalHeader == nil {
			continue
		}
		pts := data.PES.Header.OptionalHeader.PTS
		if pts == nil {
			continue
		}
		tr, ok := tracks[data.PID]
		if !ok {
			continue
		}
		if !haveRef {
			ref, haveRef = pts.Base, true
		}
		tr.add(unwrapPTS(ref, pts.Base))
	}

	if streams == nil {
		return nil, fmt.Errorf("%w: no program map table in %s", container.ErrEmptyOutput, path)
	}

	info := &container.Info{
		Path:   path,
		Format: container.FormatTS,
	}

	var start, end int64
	var timed bool
	for _, es := range streams {
		track := container.Track{
			ID:    int(es.ElementaryPID),
			Kind:  tsTrackKind(es.StreamType),
			Codec: tsCodecName(es.StreamType),
		}
		if first, last, ok := tracks[es.ElementaryPID].span(); ok {
			track.Duration = ptsToDuration(last - first)
			if !timed || first < start {
				start = first
			}
			if !timed || last > end {
				end = last
			}
			timed = true
		}
		info.Tracks = append(info.Tracks, track)
	}

	if haveRef && !timed {
		return nil, fmt.Errorf("cannot infer frame duration of %s from a single timestamp", path)
	}

	if timed {
		stamp := start % ptsWrap
		if stamp < 0 {
			stamp += ptsWrap
		}
		info.StartTime = ptsToDuration(stamp)
		info.Duration = ptsToDuration(end - start)
	}

	return info, nil
}

func ptsToDuration(v int64) time.Duration {
	secs := v / ptsClockRate
	dec := v % ptsClockRate
	return time.Duration(secs)*time.Second + time.Duration(dec)*time.Second/ptsClockRate
}

var tsCodecs = map[astits.StreamType]struct {
	kind  container.TrackKind
	codec string
}{
	astits.StreamType(0x01): {container.TrackVideo, "mpeg1video"},
	astits.StreamType(0x02): {container.TrackVideo, "mpeg2video"},
	astits.StreamType(0x03): {container.TrackAudio, "mp1"},
	astits.StreamType(0x04): {container.TrackAudio, "mp2"},
	astits.StreamType(0x0f): {container.TrackAudio, "aac"},
	astits.StreamType(0x10): {container.TrackVideo, "mpeg4"},
	astits.StreamType(0x11): {container.TrackAudio, "aac_latm"},
	astits.StreamType(0x15): {container.TrackData, "timed_id3"},
	astits.StreamType(0x1b): {container.TrackVideo, "h264"},
	astits.StreamType(0x24): {container.TrackVideo, "hevc"},
	astits.StreamType(0x81): {container.TrackAudio, "ac3"},
	astits.StreamType(0x87): {container.TrackAudio, "eac3"},
}

func tsTrackKind(t astits.StreamType) container.TrackKind {
	if c, ok := tsCodecs[t]; ok {
		return c.kind
	}
	return container.TrackData
}

func tsCodecName(t astits.StreamType) string {
	if c, ok := tsCodecs[t]; ok {
		return c.codec
	}
	return "unknown"
}

// Ensure TSProber implements container.Prober
var _ container.Prober = (*TSProber)(nil)
