package domain

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the identifiers in ISO order, Monday first.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func ParseWeekday(s string) (Weekday, bool) {
	wd := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Weekdays {
		if wd == known {
			return wd, true
		}
	}
	return "", false
}

// WeekdayOf resolves the weekday of a civil date.
func WeekdayOf(d civil.Date) Weekday {
	return FromTimeWeekday(d.In(time.UTC).Weekday())
}

func FromTimeWeekday(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekdays[int(wd)-1]
}

func (w Weekday) index() int {
	for i, known := range Weekdays {
		if w == known {
			return i
		}
	}
	return -1
}

// MondayOf returns the Monday on or before d.
func MondayOf(d civil.Date) civil.Date {
	return d.AddDays(-WeekdayOf(d).index())
}
