package container

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
		errMsg  string
	}{
		{name: "empty is zero", input: "", want: 0},
		{name: "integer seconds", input: "12", want: 12},
		{name: "fractional seconds", input: "1.25", want: 1.25},
		{name: "clock", input: "01:30:45", want: 5445},
		{name: "clock with fraction", input: "00:01:02.5", want: 62.5},
		{name: "all zeros", input: "00:00:00", want: 0},
		{name: "negative seconds", input: "-1", wantErr: true, errMsg: "must not be negative"},
		{name: "not a number", input: "abc", wantErr: true, errMsg: "expected seconds or HH:MM:SS"},
		{name: "NaN", input: "NaN", wantErr: true, errMsg: "not a finite number"},
		{name: "infinity", input: "Inf", wantErr: true, errMsg: "not a finite number"},
		{name: "too large", input: "1e300", wantErr: true, errMsg: "exceeds the maximum"},
		{name: "minutes too high", input: "01:60:00", wantErr: true, errMsg: "minutes must be 0-59"},
		{name: "seconds too high", input: "01:30:60", wantErr: true, errMsg: "seconds must be 0-59"},
		{name: "missing leading zero", input: "1:30:45", wantErr: true, errMsg: "expected seconds or HH:MM:SS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOffset(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseOffset(%q) expected error, got nil", tt.input)
					return
				}
				if !errors.Is(err, ErrInvalidOffset) {
					t.Errorf("ParseOffset(%q) error = %v, want ErrInvalidOffset", tt.input, err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseOffset(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseOffset(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got.Seconds() != tt.want {
				t.Errorf("ParseOffset(%q) = %v, want %v", tt.input, got.Seconds(), tt.want)
			}
		})
	}
}

func TestNewOffset(t *testing.T) {
	if _, err := NewOffset(math.NaN()); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("NewOffset(NaN) error = %v, want ErrInvalidOffset", err)
	}
	if _, err := NewOffset(-0.5); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("NewOffset(-0.5) error = %v, want ErrInvalidOffset", err)
	}
	if _, err := NewOffset(1e300); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("NewOffset(1e300) error = %v, want ErrInvalidOffset", err)
	}
	big, err := NewOffset(maxOffsetSeconds - 1)
	if err != nil {
		t.Fatalf("NewOffset(max-1) unexpected error: %v", err)
	}
	if big.Duration() <= 0 || strings.HasPrefix(big.String(), "-") {
		t.Errorf("NewOffset(max-1) = %v (%s), want a positive duration", big.Duration(), big.String())
	}
	o, err := NewOffset(3.5)
	if err != nil {
		t.Fatalf("NewOffset(3.5) unexpected error: %v", err)
	}
	if o.Duration() != 3500*time.Millisecond {
		t.Errorf("Offset.Duration() = %v, want 3.5s", o.Duration())
	}
}

func TestOffset_String(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{1.5, "00:00:01.500"},
		{62.25, "00:01:02.250"},
		{5445, "01:30:45.000"},
		{360000, "100:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			o, err := NewOffset(tt.seconds)
			if err != nil {
				t.Fatalf("NewOffset(%v) unexpected error: %v", tt.seconds, err)
			}
			if got := o.String(); got != tt.want {
				t.Errorf("Offset.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOffset_IsZero(t *testing.T) {
	var zero Offset
	if !zero.IsZero() {
		t.Error("expected zero offset to be zero")
	}
	nonzero, _ := NewOffset(0.001)
	if nonzero.IsZero() {
		t.Error("expected non-zero offset to not be zero")
	}
}
