package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekday is the canonical, title-cased name of a day of the week.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the recognised days in school-week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var (
	// ErrInvalidWeekday is returned for names outside the seven weekdays.
	ErrInvalidWeekday = errors.New("unrecognized weekday")
	// ErrInvalidTime is returned for time strings that are not a valid time of day.
	ErrInvalidTime = errors.New("unrecognized time of day")
)

// ParseWeekday normalises a case-insensitive full weekday name.
func ParseWeekday(raw string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, day := range Weekdays {
		if strings.ToLower(string(day)) == name {
			return day, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}

// Index returns 1 for Monday through 7 for Sunday, 0 when unrecognised.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether d is one of the canonical weekdays.
func (d Weekday) Valid() bool { return d.Index() > 0 }

// timeLayouts are tried in order; 12-hour forms come first so "9:00 AM" never
// falls through to a 24-hour layout.
var timeLayouts = []string{
	"3:04 PM",
	"3:04:05 PM",
	"3 PM",
	"15:04",
	"15:04:05",
}

// ParseTimeOfDay converts a 12-hour or 24-hour clock string into minutes since
// midnight. "9:00 AM", "9:00am", "9 a.m.", "09:00" and "9:00" all yield 540.
func ParseTimeOfDay(raw string) (int, error) {
	value := canonicalClock(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
}

// canonicalClock upper-cases the input, strips dots from "a.m."/"p.m." and
// guarantees a single space before the meridiem marker.
func canonicalClock(raw string) string {
	value := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	value = strings.ReplaceAll(value, ".", "")
	for _, marker := range []string{"AM", "PM"} {
		if strings.HasSuffix(value, marker) {
			body := strings.TrimSpace(strings.TrimSuffix(value, marker))
			return body + " " + marker
		}
	}
	return value
}

// FormatMinutes renders minutes since midnight as a 12-hour label, e.g. "9:00 AM".
func FormatMinutes(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

// Slot is a single (day, time) teaching period in comparable form.
type Slot struct {
	Day     Weekday
	Minutes int
}

// NormalizeSlot parses raw day and time strings into a Slot.
func NormalizeSlot(day, clock string) (Slot, error) {
	weekday, err := ParseWeekday(day)
	if err != nil {
		return Slot{}, err
	}
	minutes, err := ParseTimeOfDay(clock)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Day: weekday, Minutes: minutes}, nil
}

// Label is the canonical time label of the slot.
func (s Slot) Label() string { return FormatMinutes(s.Minutes) }

// String renders the slot as "Monday 10:00 AM".
func (s Slot) String() string { return fmt.Sprintf("%s %s", s.Day, s.Label()) }

// Less orders slots by weekday then time.
func (s Slot) Less(other Slot) bool {
	if s.Day.Index() != other.Day.Index() {
		return s.Day.Index() < other.Day.Index()
	}
	return s.Minutes < other.Minutes
}
