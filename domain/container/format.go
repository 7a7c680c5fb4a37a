package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a media container by the extension used on disk
type Format string

// Supported container formats
const (
	FormatMP4  Format = "mp4"
	FormatMOV  Format = "mov"
	FormatM4A  Format = "m4a"
	FormatM4S  Format = "m4s"
	FormatMKV  Format = "mkv"
	FormatWebM Format = "webm"
	FormatTS   Format = "ts"
	FormatFLV  Format = "flv"
)

// muxers maps each format to the ffmpeg muxer that writes it
var muxers = map[Format]string{
	FormatMP4:  "mp4",
	FormatMOV:  "mov",
	FormatM4A:  "ipod",
	FormatM4S:  "mp4",
	FormatMKV:  "matroska",
	FormatWebM: "webm",
	FormatTS:   "mpegts",
	FormatFLV:  "flv",
}

// ParseFormat resolves a format name, with or without a leading dot
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if _, ok := muxers[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// FormatFromPath resolves the container format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return ParseFormat(ext)
}

// Muxer returns the ffmpeg muxer name for the format
func (f Format) Muxer() string {
	return muxers[f]
}

// IsISOBMFF returns true for the MP4 family of containers
func (f Format) IsISOBMFF() bool {
	switch f {
	case FormatMP4, FormatMOV, FormatM4A, FormatM4S:
		return true
	}
	return false
}

// Ext returns the file extension for the format, including the dot
func (f Format) Ext() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}
