package schedule

import (
	"errors"
	"strings"
)

// ErrScheduleUnavailable means a schedule text could not be turned into open slots.
// Callers treat it as "no availability", never as a failure of the request.
var ErrScheduleUnavailable = errors.New("schedule unavailable")

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayLookup = map[string]int{
	"monday": 0, "mon": 0, "จันทร์": 0,
	"tuesday": 1, "tue": 1, "อังคาร": 1,
	"wednesday": 2, "wed": 2, "พุธ": 2,
	"thursday": 3, "thu": 3, "พฤหัสบดี": 3,
	"friday": 4, "fri": 4, "ศุกร์": 4,
	"saturday": 5, "sat": 5, "เสาร์": 5,
	"sunday": 6, "sun": 6, "อาทิตย์": 6,
}

// LookupWeekday maps a day name to its Monday-first index.
func LookupWeekday(name string) (int, bool) {
	index, ok := weekdayLookup[strings.ToLower(strings.TrimSpace(name))]
	return index, ok
}

// Parse reads a free-text schedule of the form
//
//	"<day>, <day>, ... | <HH:MM> - <HH:MM>"
//
// Unrecognised day names are skipped. The result is ErrScheduleUnavailable when the text
// is empty or malformed, or when no day name is recognised.
func Parse(text string) (WeeklyAvailability, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}

	parts := strings.Split(text, "|")
	if len(parts) != 2 {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}

	bounds := strings.Split(parts[1], "-")
	if len(bounds) != 2 {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}
	start, err := ParseTimeOfDay(bounds[0])
	if err != nil {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}
	end, err := ParseTimeOfDay(bounds[1])
	if err != nil {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}

	var days WeekdaySet
	for _, name := range strings.Split(parts[0], ",") {
		if index, ok := LookupWeekday(name); ok {
			days = days.With(index)
		}
	}
	if days.Empty() {
		return WeeklyAvailability{}, ErrScheduleUnavailable
	}

	return WeeklyAvailability{Days: days, Start: start, End: end}, nil
}
