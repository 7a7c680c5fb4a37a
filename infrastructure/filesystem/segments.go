package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SegmentExtensions are the file extensions treated as media segments.
// fMP4 .m4s fragments are left out: they depend on a separate init
// segment and cannot be remuxed one at a time.
var SegmentExtensions = []string{".ts"}

// SegmentFinder lists media segments in a directory
type SegmentFinder struct {
	suffix string
}

// NewSegmentFinder creates a SegmentFinder that skips files whose base name
// ends with convertedSuffix, so converted outputs are never picked up again
func NewSegmentFinder(convertedSuffix string) *SegmentFinder {
	return &SegmentFinder{suffix: convertedSuffix}
}

// ListSegments returns the segments in dir sorted by file name
func (f *SegmentFinder) ListSegments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if f.IsSegment(entry.Name()) {
			segments = append(segments, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(segments)
	return segments, nil
}

// IsSegment returns true if name looks like an unconverted media segment
func (f *SegmentFinder) IsSegment(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if f.suffix != "" && strings.HasSuffix(base, f.suffix) {
		return false
	}
	for _, e := range SegmentExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
