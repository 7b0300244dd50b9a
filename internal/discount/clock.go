package discount

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClock is returned when a time-of-day value is not a valid "HH:MM".
var ErrInvalidClock = errors.New("invalid clock value")

const minutesPerDay = 24 * 60

// unsetClock marks a window bound that was absent from the payload.
const unsetClock Clock = -1

// Clock is a wall-clock time of day with minute resolution.
type Clock int

// ParseClock parses "HH:MM" (24-hour).
func ParseClock(value string) (Clock, error) {
	trimmed := strings.TrimSpace(value)
	hh, mm, ok := strings.Cut(trimmed, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%q: %w", value, ErrInvalidClock)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%q: %w", value, ErrInvalidClock)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q: %w", value, ErrInvalidClock)
	}
	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for literals; it panics on malformed input.
func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the time of day of t in t's own location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) valid() bool { return c >= 0 && c < minutesPerDay }

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%d: %w", int(c), ErrInvalidClock)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is an inclusive time-of-day range. A window whose start is after its
// end wraps past midnight.
type Window struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// UnmarshalJSON requires both bounds. A missing bound is kept as unset so
// validation rejects the window instead of reading it as midnight.
func (w *Window) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start *Clock `json:"start"`
		End   *Clock `json:"end"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	w.Start, w.End = unsetClock, unsetClock
	if raw.Start != nil {
		w.Start = *raw.Start
	}
	if raw.End != nil {
		w.End = *raw.End
	}
	return nil
}

// Contains reports whether the time of day of t lies within the window.
// An invalid window contains nothing.
func (w Window) Contains(t time.Time) bool {
	if w.validate() != nil {
		return false
	}
	now := ClockOf(t)
	if w.Start <= w.End {
		return now >= w.Start && now <= w.End
	}
	return now >= w.Start || now <= w.End
}

func (w Window) validate() error {
	if w.Start == unsetClock || w.End == unsetClock {
		return fmt.Errorf("window needs both start and end: %w", ErrInvalidClock)
	}
	if !w.Start.valid() || !w.End.valid() {
		return fmt.Errorf("window %d-%d: %w", int(w.Start), int(w.End), ErrInvalidClock)
	}
	return nil
}
