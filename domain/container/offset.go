package container

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Offset is a non-negative start time in seconds
type Offset struct {
	seconds float64
}

// maxOffsetSeconds is the longest offset a time.Duration can hold
var maxOffsetSeconds = time.Duration(math.MaxInt64).Seconds()

// clockRegex matches HH:MM:SS with optional fractional seconds
var clockRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(\.\d{1,6})?$`)

// NewOffset creates an Offset from seconds
func NewOffset(seconds float64) (Offset, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Offset{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidOffset, seconds)
	}
	if seconds < 0 {
		return Offset{}, fmt.Errorf("%w: %v must not be negative", ErrInvalidOffset, seconds)
	}
	if seconds >= maxOffsetSeconds {
		return Offset{}, fmt.Errorf("%w: %v exceeds the maximum of %.0f seconds", ErrInvalidOffset, seconds, maxOffsetSeconds)
	}
	return Offset{seconds: seconds}, nil
}

// ParseOffset parses plain seconds ("12.5") or a clock value ("00:01:02.500")
func ParseOffset(s string) (Offset, error) {
	if s == "" {
		return Offset{}, nil
	}

	if matches := clockRegex.FindStringSubmatch(s); matches != nil {
		hours, _ := strconv.Atoi(matches[1])
		minutes, _ := strconv.Atoi(matches[2])
		seconds, _ := strconv.Atoi(matches[3])

		if minutes > 59 {
			return Offset{}, fmt.Errorf("%w: %q minutes must be 0-59", ErrInvalidOffset, s)
		}
		if seconds > 59 {
			return Offset{}, fmt.Errorf("%w: %q seconds must be 0-59", ErrInvalidOffset, s)
		}

		var frac float64
		if matches[4] != "" {
			frac, _ = strconv.ParseFloat("0"+matches[4], 64)
		}
		return NewOffset(float64(hours*3600+minutes*60+seconds) + frac)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Offset{}, fmt.Errorf("%w: %q expected seconds or HH:MM:SS[.fff]", ErrInvalidOffset, s)
	}
	return NewOffset(v)
}

// Seconds returns the offset in seconds
func (o Offset) Seconds() float64 {
	return o.seconds
}

// Duration returns the offset as a time.Duration
func (o Offset) Duration() time.Duration {
	return time.Duration(math.Round(o.seconds * float64(time.Second)))
}

// IsZero returns true if the offset is 0
func (o Offset) IsZero() bool {
	return o.seconds == 0
}

// String returns the offset in HH:MM:SS.mmm format
func (o Offset) String() string {
	ms := int64(math.Round(o.seconds * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
