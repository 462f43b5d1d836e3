package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ScheduleErrorKind string

const (
	ScheduleErrUnknownWeekday     ScheduleErrorKind = "unknown_weekday"
	ScheduleErrDuplicateWeekday   ScheduleErrorKind = "duplicate_weekday"
	ScheduleErrInvalidTimeFormat  ScheduleErrorKind = "invalid_time_format"
	ScheduleErrInvalidWindowOrder ScheduleErrorKind = "invalid_window_order"
)

var (
	ErrUnknownWeekday     = errors.New("unknown weekday")
	ErrDuplicateWeekday   = errors.New("duplicate weekday")
	ErrInvalidTimeFormat  = errors.New("invalid time format")
	ErrInvalidWindowOrder = errors.New("close must be later than open")
)

// ScheduleError reports the first problem found in a raw weekly schedule.
type ScheduleError struct {
	Kind  ScheduleErrorKind
	Day   string
	Value string
}

func (e *ScheduleError) Error() string {
	switch e.Kind {
	case ScheduleErrUnknownWeekday:
		return fmt.Sprintf("unknown weekday %q", e.Day)
	case ScheduleErrDuplicateWeekday:
		return fmt.Sprintf("weekday %q is given more than once", e.Day)
	case ScheduleErrInvalidTimeFormat:
		return fmt.Sprintf("%s: invalid time format %q, want HH:MM", e.Day, e.Value)
	case ScheduleErrInvalidWindowOrder:
		return fmt.Sprintf("%s: close must be later than open", e.Day)
	default:
		return fmt.Sprintf("%s: invalid schedule", e.Day)
	}
}

func (e *ScheduleError) Is(target error) bool {
	switch target {
	case ErrUnknownWeekday:
		return e.Kind == ScheduleErrUnknownWeekday
	case ErrDuplicateWeekday:
		return e.Kind == ScheduleErrDuplicateWeekday
	case ErrInvalidTimeFormat:
		return e.Kind == ScheduleErrInvalidTimeFormat
	case ErrInvalidWindowOrder:
		return e.Kind == ScheduleErrInvalidWindowOrder
	}
	return false
}

// RawWindow is the unvalidated wire and storage form of one working day.
type RawWindow struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Window is a validated same-day half-open working range [Open, Close).
type Window struct {
	Open  Clock `json:"open"`
	Close Clock `json:"close"`
}

// Contains reports whether a slot starting at c lies inside the window.
func (w Window) Contains(c Clock) bool {
	return c >= w.Open && c < w.Close
}

// ScheduleSpec is an immutable, validated weekly schedule.
type ScheduleSpec struct {
	windows map[Weekday]Window
}

// ParseScheduleSpec validates raw weekday windows. A nil window, or a weekday
// missing from the map, means the professional does not work that day. Keys
// are case-insensitive, so two keys naming the same weekday are rejected.
func ParseScheduleSpec(raw map[string]*RawWindow) (ScheduleSpec, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	windows := make(map[Weekday]Window, len(raw))
	seen := make(map[Weekday]struct{}, len(raw))
	for _, key := range keys {
		wd, ok := ParseWeekday(key)
		if !ok {
			return ScheduleSpec{}, &ScheduleError{Kind: ScheduleErrUnknownWeekday, Day: key}
		}
		if _, dup := seen[wd]; dup {
			return ScheduleSpec{}, &ScheduleError{Kind: ScheduleErrDuplicateWeekday, Day: key}
		}
		seen[wd] = struct{}{}
		rw := raw[key]
		if rw == nil {
			continue
		}
		w, err := parseWindow(wd, *rw)
		if err != nil {
			return ScheduleSpec{}, err
		}
		windows[wd] = w
	}
	return ScheduleSpec{windows: windows}, nil
}

func parseWindow(day Weekday, rw RawWindow) (Window, error) {
	open, err := ParseClock(strings.TrimSpace(rw.Open))
	if err != nil {
		return Window{}, &ScheduleError{Kind: ScheduleErrInvalidTimeFormat, Day: string(day), Value: rw.Open}
	}
	closeAt, err := ParseClock(strings.TrimSpace(rw.Close))
	if err != nil {
		return Window{}, &ScheduleError{Kind: ScheduleErrInvalidTimeFormat, Day: string(day), Value: rw.Close}
	}
	if closeAt <= open {
		return Window{}, &ScheduleError{Kind: ScheduleErrInvalidWindowOrder, Day: string(day)}
	}
	return Window{Open: open, Close: closeAt}, nil
}

// NewScheduleSpec builds a spec from already validated windows.
func NewScheduleSpec(windows map[Weekday]Window) (ScheduleSpec, error) {
	out := make(map[Weekday]Window, len(windows))
	for wd, w := range windows {
		if wd.index() < 0 {
			return ScheduleSpec{}, &ScheduleError{Kind: ScheduleErrUnknownWeekday, Day: string(wd)}
		}
		if !w.Open.Valid() || !w.Close.Valid() {
			return ScheduleSpec{}, &ScheduleError{Kind: ScheduleErrInvalidTimeFormat, Day: string(wd)}
		}
		if w.Close <= w.Open {
			return ScheduleSpec{}, &ScheduleError{Kind: ScheduleErrInvalidWindowOrder, Day: string(wd)}
		}
		out[wd] = w
	}
	return ScheduleSpec{windows: out}, nil
}

func (s ScheduleSpec) Window(wd Weekday) (Window, bool) {
	w, ok := s.windows[wd]
	return w, ok
}

// Allows reports whether a slot start is inside the working window of wd.
func (s ScheduleSpec) Allows(wd Weekday, c Clock) bool {
	w, ok := s.windows[wd]
	return ok && w.Contains(c)
}

func (s ScheduleSpec) IsEmpty() bool {
	return len(s.windows) == 0
}

// Raw converts the schedule back to its storage form; every weekday is present,
// non-working days as nil.
func (s ScheduleSpec) Raw() map[string]*RawWindow {
	out := make(map[string]*RawWindow, len(Weekdays))
	for _, wd := range Weekdays {
		w, ok := s.windows[wd]
		if !ok {
			out[string(wd)] = nil
			continue
		}
		out[string(wd)] = &RawWindow{Open: w.Open.String(), Close: w.Close.String()}
	}
	return out
}
