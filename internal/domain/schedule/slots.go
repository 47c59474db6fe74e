package schedule

import (
	"time"
)

// Slot is one open (or caller-held) slot on a given date.
type Slot struct {
	Time         string `json:"time"`
	BookedByUser bool   `json:"booked_by_user"`
}

// SlotKey identifies a slot as "YYYY-MM-DD|HH:MM".
func SlotKey(date, clock string) string {
	return date + "|" + clock
}

// Occupancy describes the Confirmed bookings of one doctor as seen by one caller.
type Occupancy struct {
	// Booked holds every slot key taken by a Confirmed booking, mapped to its patient.
	Booked map[string]int64
	// CallerID is the patient asking; zero means nobody's bookings are shown.
	CallerID int64
}

func (o Occupancy) state(key string) (taken, mine bool) {
	patientID, ok := o.Booked[key]
	if !ok {
		return false, false
	}
	return true, o.CallerID != 0 && patientID == o.CallerID
}

// Enumerate lists the slots of the next horizonDays days, starting with the calendar
// day of from, grouped by date. Slots held by other patients are left out; slots held
// by the caller are kept and flagged. Dates without any slot are absent from the map.
func Enumerate(avail WeeklyAvailability, from time.Time, horizonDays int, occ Occupancy) map[string][]Slot {
	result := make(map[string][]Slot)
	if !avail.Specified() || horizonDays <= 0 {
		return result
	}

	y, m, d := from.Date()
	for offset := 0; offset < horizonDays; offset++ {
		day := time.Date(y, m, d+offset, 0, 0, 0, 0, from.Location())
		if !avail.Days.Contains(day.Weekday()) {
			continue
		}

		dateStr := day.Format(DateLayout)
		for slot := avail.Start; slot < avail.End; slot += TimeOfDay(SlotInterval / time.Minute) {
			clock := slot.String()
			taken, mine := occ.state(SlotKey(dateStr, clock))
			if taken && !mine {
				continue
			}
			result[dateStr] = append(result[dateStr], Slot{Time: clock, BookedByUser: mine})
		}
	}

	return result
}
