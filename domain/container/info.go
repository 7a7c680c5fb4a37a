package container

import "time"

// TrackKind classifies an elementary stream
type TrackKind string

const (
	TrackVideo    TrackKind = "video"
	TrackAudio    TrackKind = "audio"
	TrackSubtitle TrackKind = "subtitle"
	TrackData     TrackKind = "data"
)

// Track describes one stream inside a container
type Track struct {
	ID       int
	Kind     TrackKind
	Codec    string
	Duration time.Duration
}

// Info describes a probed container
type Info struct {
	Path      string
	Format    Format
	Duration  time.Duration
	StartTime time.Duration
	Tracks    []Track
}

// HasDuration returns true if the prober could determine a duration
func (i *Info) HasDuration() bool {
	return i != nil && i.Duration > 0
}

// TrackCount returns the number of tracks of the given kind
func (i *Info) TrackCount(kind TrackKind) int {
	n := 0
	for _, t := range i.Tracks {
		if t.Kind == kind {
			n++
		}
	}
	return n
}
