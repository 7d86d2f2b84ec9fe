package workshop

import (
	"github.com/warp/workshop-planner/generic"
)

// HolidaySet is one worker's holiday intervals. It implements
// generic.HolidayCalendar.
type HolidaySet []generic.Period

// IsHoliday reports whether date falls inside any interval. Intervals may
// overlap; malformed ones never match.
func (hs HolidaySet) IsHoliday(date generic.TimePoint) bool {
	for _, p := range hs {
		if p.Contains(date) {
			return true
		}
	}
	return false
}

// IsWorkingDay is false on weekends and holidays.
func (hs HolidaySet) IsWorkingDay(date generic.TimePoint) bool {
	return generic.IsWorkingDay(date, hs)
}

// IndexHolidays groups intervals by worker.
func IndexHolidays(holidays []HolidayInterval) map[generic.WorkerID]HolidaySet {
	index := make(map[generic.WorkerID]HolidaySet)
	for _, h := range holidays {
		index[h.WorkerID] = append(index[h.WorkerID], h.Period())
	}
	return index
}
