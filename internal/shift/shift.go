// Package shift resolves worker shift configurations into concrete time
// windows and tests whether reservation intervals fit inside them.
package shift

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies a worker's configured shift for a single calendar date.
type Type string

const (
	// TypeZ1 is the fixed morning shift, 06:00-14:00.
	TypeZ1 Type = "Z1"
	// TypeZ2 is the fixed midday shift, 10:00-18:00.
	TypeZ2 Type = "Z2"
	// TypeZ3 is the fixed evening shift, 15:00-23:00.
	TypeZ3 Type = "Z3"
	// TypeOff marks a day off; no reservations are offered.
	TypeOff Type = "OFF"
	// TypeCustom carries an explicit start/end pair which may wrap past midnight.
	TypeCustom Type = "CUSTOM"
)

// Valid reports whether t is one of the known shift types.
func (t Type) Valid() bool {
	switch t {
	case TypeZ1, TypeZ2, TypeZ3, TypeOff, TypeCustom:
		return true
	}
	return false
}

// ErrInvalidTime indicates a clock string that is not HH:MM or HH:MM:SS.
var ErrInvalidTime = errors.New("shift: invalid time format")

// Hours holds an explicit start/end clock pair for a custom shift.
type Hours struct {
	Start string
	End   string
}

// Window is a resolved shift interval expressed as hour-of-day floats in
// [0,24). Start greater than End denotes an overnight window that wraps
// past midnight.
type Window struct {
	Start float64
	End   float64
}

// Wraps reports whether the window spans midnight.
func (w Window) Wraps() bool {
	return w.Start > w.End
}

// Fits reports whether the candidate interval [start,end) lies within the
// window. Reservations never wrap midnight, so the candidate is always a
// plain interval; the window may wrap. For a wrapped window either side is
// accepted on its own: a candidate starting after the evening boundary or
// ending before the morning boundary fits, without checking that it stays
// contiguous with the wrap. This permissive rule matches longstanding
// behaviour and is kept for compatibility.
func (w Window) Fits(start, end float64) bool {
	if w.Wraps() {
		return start >= w.Start || end <= w.End
	}
	return start >= w.Start && end <= w.End
}

var fixedWindows = map[Type]Window{
	TypeZ1: {Start: 6, End: 14},
	TypeZ2: {Start: 10, End: 18},
	TypeZ3: {Start: 15, End: 23},
}

// ResolveWindow maps a shift configuration to a concrete window. The second
// return value is false when the worker has no usable window that day: a day
// off, an unknown type, or a custom shift missing its hours.
func ResolveWindow(t Type, custom *Hours) (Window, bool) {
	if w, ok := fixedWindows[t]; ok {
		return w, true
	}
	if t != TypeCustom || custom == nil {
		return Window{}, false
	}
	start, err := ParseClock(custom.Start)
	if err != nil {
		return Window{}, false
	}
	end, err := ParseClock(custom.End)
	if err != nil {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}

// FitsReservation parses the reservation clock strings and tests them
// against the window. Malformed input is reported as ErrInvalidTime rather
// than silently producing a non-fit.
func FitsReservation(w Window, startTime, endTime string) (bool, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return false, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return false, err
	}
	return w.Fits(start, end), nil
}

// ParseClock converts an HH:MM or HH:MM:SS string to an hour-of-day float
// with minute granularity. Seconds, when present, are ignored.
func ParseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	return float64(hour) + float64(minute)/60, nil
}
