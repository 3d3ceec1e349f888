package video

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Timecode represents a position in a video in HH:MM:SS.mmm form
type Timecode struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// timecodeRegex matches HH:MM:SS with an optional fractional part of up to 3 digits.
// Hours may be wider than two digits.
var timecodeRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)

// maxSeconds is the largest position a trim range may name. Beyond it a
// millisecond count no longer fits an int64.
const maxSeconds = 9e15

// TimecodeFromSeconds decomposes a non-negative number of seconds into a Timecode.
// Sub-millisecond precision is truncated, never rounded. Values too large for an
// int64 millisecond count saturate.
func TimecodeFromSeconds(seconds float64) Timecode {
	var total int64
	switch ms := math.Floor(seconds * 1000); {
	case !(ms > 0):
		total = 0
	case ms >= math.MaxInt64:
		total = math.MaxInt64
	default:
		total = int64(ms)
	}

	return Timecode{
		Hours:        int(total / 3_600_000),
		Minutes:      int(total % 3_600_000 / 60_000),
		Seconds:      int(total % 60_000 / 1000),
		Milliseconds: int(total % 1000),
	}
}

// FormatTimecode formats seconds as a zero-padded HH:MM:SS.mmm string. The hours
// field widens as needed.
func FormatTimecode(seconds float64) string {
	if seconds < maxSeconds || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return TimecodeFromSeconds(seconds).String()
	}

	whole := math.Floor(seconds)
	rem := math.Mod(whole, 3600)
	hours := (whole - rem) / 3600
	millis := math.Floor((seconds - whole) * 1000)
	return fmt.Sprintf("%02.0f:%02.0f:%02.0f.%03.0f", hours, math.Floor(rem/60), math.Mod(rem, 60), millis)
}

// ParseTimecode parses a timestamp in HH:MM:SS or HH:MM:SS.mmm format
func ParseTimecode(s string) (Timecode, error) {
	matches := timecodeRegex.FindStringSubmatch(s)
	if matches == nil {
		return Timecode{}, fmt.Errorf("invalid timecode format %q: expected HH:MM:SS[.mmm]", s)
	}

	hours, err := strconv.Atoi(matches[1])
	if err != nil {
		return Timecode{}, fmt.Errorf("invalid timecode %q: %w", s, err)
	}
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])

	millis := 0
	if frac := matches[4]; frac != "" {
		// ".5" is half a second, not 5ms
		millis, _ = strconv.Atoi(frac + strings.Repeat("0", 3-len(frac)))
	}

	if minutes > 59 {
		return Timecode{}, fmt.Errorf("invalid timecode %q: minutes must be 0-59", s)
	}
	if seconds > 59 {
		return Timecode{}, fmt.Errorf("invalid timecode %q: seconds must be 0-59", s)
	}

	return Timecode{
		Hours:        hours,
		Minutes:      minutes,
		Seconds:      seconds,
		Milliseconds: millis,
	}, nil
}

// ParseSeconds accepts either a raw number of seconds ("65.5") or a timecode ("00:01:05.500")
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		tc, err := ParseTimecode(s)
		if err != nil {
			return 0, err
		}
		return tc.TotalSeconds(), nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected seconds or HH:MM:SS[.mmm]", s)
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, fmt.Errorf("invalid time %q: must be a finite, non-negative number", s)
	}
	return secs, nil
}

// String returns the timecode in HH:MM:SS.mmm format
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds)
}

// TotalMilliseconds returns the timecode as a whole number of milliseconds
func (t Timecode) TotalMilliseconds() int64 {
	return int64(t.Hours)*3_600_000 + int64(t.Minutes)*60_000 + int64(t.Seconds)*1000 + int64(t.Milliseconds)
}

// TotalSeconds returns the timecode as fractional seconds
func (t Timecode) TotalSeconds() float64 {
	return float64(t.TotalMilliseconds()) / 1000
}

// IsZero returns true if the timecode is 00:00:00.000
func (t Timecode) IsZero() bool {
	return t.TotalMilliseconds() == 0
}

// Before returns true if t is before other
func (t Timecode) Before(other Timecode) bool {
	return t.TotalMilliseconds() < other.TotalMilliseconds()
}
