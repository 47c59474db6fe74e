package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-03 is a Monday.
var monday = time.Date(2024, 6, 3, 15, 20, 0, 0, time.UTC)

func mustParse(t *testing.T, text string) WeeklyAvailability {
	t.Helper()
	avail, err := Parse(text)
	require.NoError(t, err)
	return avail
}

func TestEnumerate_HalfOpenWindow(t *testing.T) {
	avail := mustParse(t, "Monday, Wednesday | 09:00 - 10:00")

	slots := Enumerate(avail, monday, HorizonDays, Occupancy{})

	assert.Equal(t, []Slot{{Time: "09:00"}, {Time: "09:30"}}, slots["2024-06-03"])
	assert.Equal(t, []Slot{{Time: "09:00"}, {Time: "09:30"}}, slots["2024-06-05"])
	assert.NotContains(t, slots, "2024-06-04")
}

func TestEnumerate_TrailingPartialSlot(t *testing.T) {
	avail := mustParse(t, "Monday | 09:00 - 10:15")

	slots := Enumerate(avail, monday, 1, Occupancy{})

	assert.Equal(t, []Slot{{Time: "09:00"}, {Time: "09:30"}, {Time: "10:00"}}, slots["2024-06-03"])
}

func TestEnumerate_SlotsStayOnScheduleGrid(t *testing.T) {
	avail := mustParse(t, "Tuesday, Friday, Sunday | 08:15 - 12:40")

	slots := Enumerate(avail, monday, HorizonDays, Occupancy{})
	require.NotEmpty(t, slots)

	last := monday.AddDate(0, 0, HorizonDays-1).Format(DateLayout)
	for date, daySlots := range slots {
		day, err := time.Parse(DateLayout, date)
		require.NoError(t, err)
		assert.True(t, avail.Days.Contains(day.Weekday()), "date %s is not a scheduled weekday", date)
		assert.True(t, date >= "2024-06-03" && date <= last, "date %s outside horizon", date)

		for _, slot := range daySlots {
			tod, err := ParseTimeOfDay(slot.Time)
			require.NoError(t, err)
			assert.True(t, tod >= avail.Start && tod < avail.End, "slot %s outside window", slot.Time)
			assert.Zero(t, int(tod-avail.Start)%30, "slot %s not aligned to start", slot.Time)
			assert.True(t, avail.Covers(day, tod))
		}
	}
}

func TestEnumerate_HorizonLength(t *testing.T) {
	everyDay := mustParse(t, "Mon, Tue, Wed, Thu, Fri, Sat, Sun | 09:00 - 09:30")

	slots := Enumerate(everyDay, monday, HorizonDays, Occupancy{})

	assert.Len(t, slots, HorizonDays)
	assert.Contains(t, slots, "2024-07-02")
	assert.NotContains(t, slots, "2024-07-03")
}

func TestEnumerate_Occupancy(t *testing.T) {
	avail := mustParse(t, "Monday | 09:00 - 10:30")
	booked := map[string]int64{
		SlotKey("2024-06-03", "09:00"): 1,
		SlotKey("2024-06-03", "09:30"): 2,
	}

	forPatientA := Enumerate(avail, monday, 1, Occupancy{Booked: booked, CallerID: 1})
	assert.Equal(t, []Slot{{Time: "09:00", BookedByUser: true}, {Time: "10:00"}}, forPatientA["2024-06-03"])

	forPatientC := Enumerate(avail, monday, 1, Occupancy{Booked: booked, CallerID: 3})
	assert.Equal(t, []Slot{{Time: "10:00"}}, forPatientC["2024-06-03"])

	anonymous := Enumerate(avail, monday, 1, Occupancy{Booked: booked})
	assert.Equal(t, []Slot{{Time: "10:00"}}, anonymous["2024-06-03"])
}

func TestEnumerate_Unspecified(t *testing.T) {
	assert.Empty(t, Enumerate(WeeklyAvailability{}, monday, HorizonDays, Occupancy{}))

	inverted := WeeklyAvailability{Days: WeekdaySet(0).With(0), Start: NewTimeOfDay(12, 0), End: NewTimeOfDay(9, 0)}
	assert.Empty(t, Enumerate(inverted, monday, HorizonDays, Occupancy{}))
}

func TestWeeklyAvailability_Covers(t *testing.T) {
	avail := mustParse(t, "Monday | 09:00 - 10:00")

	assert.True(t, avail.Covers(monday, NewTimeOfDay(9, 30)))
	assert.False(t, avail.Covers(monday, NewTimeOfDay(9, 15)))
	assert.False(t, avail.Covers(monday, NewTimeOfDay(10, 0)))
	assert.False(t, avail.Covers(monday.AddDate(0, 0, 1), NewTimeOfDay(9, 0)))
}
