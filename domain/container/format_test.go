package container

import (
	"errors"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path      string
		want      Format
		wantMuxer string
		isoBMFF   bool
		wantErr   bool
	}{
		{"/a/b.mp4", FormatMP4, "mp4", true, false},
		{"/a/b.M4A", FormatM4A, "ipod", true, false},
		{"/a/b.mov", FormatMOV, "mov", true, false},
		{"/a/b.ts", FormatTS, "mpegts", false, false},
		{"/a/b.mkv", FormatMKV, "matroska", false, false},
		{"/a/b.webm", FormatWebM, "webm", false, false},
		{"/a/b.flv", FormatFLV, "flv", false, false},
		{"/a/b.avi", "", "", false, true},
		{"/a/noext", "", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatFromPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFromPath(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
			if got.Muxer() != tt.wantMuxer {
				t.Errorf("Format.Muxer() = %q, want %q", got.Muxer(), tt.wantMuxer)
			}
			if got.IsISOBMFF() != tt.isoBMFF {
				t.Errorf("Format.IsISOBMFF() = %v, want %v", got.IsISOBMFF(), tt.isoBMFF)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"mp4", ".mp4", " MP4 "} {
		got, err := ParseFormat(in)
		if err != nil || got != FormatMP4 {
			t.Errorf("ParseFormat(%q) = %q, %v; want mp4", in, got, err)
		}
	}
}
