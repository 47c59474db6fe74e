package schedule

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// SlotInterval is the length of one bookable slot.
	SlotInterval = 30 * time.Minute

	// HorizonDays is how many days ahead, today included, slots are offered.
	HorizonDays = 30

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// Unspecified is the display text of a doctor without weekly availability.
	Unspecified = "unspecified"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day, use HH:MM")

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant of t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

// Value stores the time as "HH:MM".
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan reads an "HH:MM" (or "HH:MM:SS") column.
func (t *TimeOfDay) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*t = 0
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute())
		return nil
	default:
		return fmt.Errorf("unsupported time of day value: %T", value)
	}
	if len(s) > 5 {
		s = s[:5]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WeekdaySet is a bitmask of weekdays where bit 0 is Monday and bit 6 is Sunday.
type WeekdaySet uint8

// WeekdayIndex converts a time.Weekday to the Monday-first index used by WeekdaySet.
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func (s WeekdaySet) With(index int) WeekdaySet {
	if index < 0 || index > 6 {
		return s
	}
	return s | 1<<uint(index)
}

func (s WeekdaySet) Has(index int) bool {
	if index < 0 || index > 6 {
		return false
	}
	return s&(1<<uint(index)) != 0
}

func (s WeekdaySet) Contains(wd time.Weekday) bool {
	return s.Has(WeekdayIndex(wd))
}

func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

// Indices returns the set members in Monday-first order.
func (s WeekdaySet) Indices() []int {
	indices := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		if s.Has(i) {
			indices = append(indices, i)
		}
	}
	return indices
}

// Names returns the English day names of the set members in Monday-first order.
func (s WeekdaySet) Names() []string {
	names := make([]string, 0, 7)
	for _, i := range s.Indices() {
		names = append(names, weekdayNames[i])
	}
	return names
}

// WeeklyAvailability is a doctor's recurring opening: the same time window on every
// day of the set. A zero value means the doctor has no open slots.
type WeeklyAvailability struct {
	Days  WeekdaySet `gorm:"column:days;not null;default:0"`
	Start TimeOfDay  `gorm:"column:start;type:varchar(5)"`
	End   TimeOfDay  `gorm:"column:end;type:varchar(5)"`
}

// NewWeeklyAvailability builds an availability from day names and "HH:MM" bounds.
// Incomplete input yields the unspecified availability; unknown day names are dropped.
func NewWeeklyAvailability(days []string, start, end string) (WeeklyAvailability, error) {
	var set WeekdaySet
	for _, name := range days {
		if index, ok := LookupWeekday(name); ok {
			set = set.With(index)
		}
	}
	if set.Empty() || strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return WeeklyAvailability{}, nil
	}

	startTime, err := ParseTimeOfDay(start)
	if err != nil {
		return WeeklyAvailability{}, err
	}
	endTime, err := ParseTimeOfDay(end)
	if err != nil {
		return WeeklyAvailability{}, err
	}

	return WeeklyAvailability{Days: set, Start: startTime, End: endTime}, nil
}

// Specified reports whether the availability has at least one day and a non-empty window.
func (a WeeklyAvailability) Specified() bool {
	return !a.Days.Empty() && a.Start < a.End
}

// Covers reports whether date and slot time fall on the availability's slot grid.
func (a WeeklyAvailability) Covers(date time.Time, slot TimeOfDay) bool {
	if !a.Specified() || !a.Days.Contains(date.Weekday()) {
		return false
	}
	if slot < a.Start || slot >= a.End {
		return false
	}
	return time.Duration(slot-a.Start)*time.Minute%SlotInterval == 0
}

// String renders "Monday, Wednesday | 09:00 - 12:00", or Unspecified.
func (a WeeklyAvailability) String() string {
	if a.Days.Empty() {
		return Unspecified
	}
	return fmt.Sprintf("%s | %s - %s", strings.Join(a.Days.Names(), ", "), a.Start, a.End)
}
