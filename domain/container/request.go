package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects how repack treats the start time offset
type Mode string

const (
	// ModeTrim seeks to the offset and rebases output timestamps to zero
	ModeTrim Mode = "trim"
	// ModeShift keeps every packet and shifts timestamps to begin at the offset
	ModeShift Mode = "shift"
)

// ParseMode parses a repack mode; empty means ModeTrim
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTrim:
		return ModeTrim, nil
	case ModeShift:
		return ModeShift, nil
	}
	return "", fmt.Errorf("unknown repack mode %q: use trim or shift", s)
}

// RemuxRequest represents a request to copy streams into a new container
type RemuxRequest struct {
	SourcePath string
	OutputPath string
	Format     Format
}

// NewRemuxRequest creates a RemuxRequest, resolving the output format from its extension
func NewRemuxRequest(sourcePath, outputPath string) (*RemuxRequest, error) {
	if err := validatePaths(sourcePath, outputPath); err != nil {
		return nil, err
	}

	format, err := FormatFromPath(outputPath)
	if err != nil {
		return nil, err
	}

	return &RemuxRequest{
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Format:     format,
	}, nil
}

// RepackRequest represents a request to rewrite a container from a start offset
type RepackRequest struct {
	SourcePath string
	OutputPath string
	Format     Format
	Start      Offset
	Mode       Mode
}

// NewRepackRequest creates a RepackRequest with validation
func NewRepackRequest(sourcePath, outputPath string, start Offset, mode Mode) (*RepackRequest, error) {
	if err := validatePaths(sourcePath, outputPath); err != nil {
		return nil, err
	}

	format, err := FormatFromPath(outputPath)
	if err != nil {
		return nil, err
	}

	if mode == "" {
		mode = ModeTrim
	}
	if mode != ModeTrim && mode != ModeShift {
		return nil, fmt.Errorf("unknown repack mode %q: use trim or shift", mode)
	}

	return &RepackRequest{
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Format:     format,
		Start:      start,
		Mode:       mode,
	}, nil
}

// IsPlainCopy returns true if the repack needs no seek or timestamp shift
func (r *RepackRequest) IsPlainCopy() bool {
	return r.Start.IsZero()
}

// ConvertedPath returns the output path used for converted segments:
// <dir>/<base><suffix>.mp4
func ConvertedPath(segmentPath, suffix string) string {
	dir := filepath.Dir(segmentPath)
	base := strings.TrimSuffix(filepath.Base(segmentPath), filepath.Ext(segmentPath))
	return filepath.Join(dir, base+suffix+FormatMP4.Ext())
}

func validatePaths(sourcePath, outputPath string) error {
	if sourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if filepath.Clean(sourcePath) == filepath.Clean(outputPath) {
		return fmt.Errorf("%w: %s", ErrSamePath, outputPath)
	}
	return nil
}
