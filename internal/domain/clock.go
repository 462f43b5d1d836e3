package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MinutesPerDay bounds every Clock value.
const MinutesPerDay = 24 * 60

var (
	clockPattern       = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	storedClockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
)

var errInvalidClock = errors.New("time must be HH:MM in 24-hour format")

// Clock is a time of day with minute precision, stored as minutes since midnight.
type Clock int

// ParseClock accepts strict 24-hour HH:MM.
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errInvalidClock
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return Clock(h*60 + mm), nil
}

// NormalizeClock reads stored slot times, HH:MM or HH:MM:SS, and truncates
// seconds. Request input goes through ParseClock.
func NormalizeClock(s string) (Clock, error) {
	if !storedClockPattern.MatchString(s) {
		return 0, errInvalidClock
	}
	return ParseClock(s[:5])
}

func ClockOf(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("clock %d out of range", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
